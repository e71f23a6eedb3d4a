// Copyright 2026 The sofcheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package check

import (
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

// PdfContentType is the only accepted content type of inline attachment data.
const PdfContentType = "application/pdf"

// DocumentReference checks that a DocumentReference describes a current sick
// leave document with author, subject, encounter context and a PDF attached
// either inline as base64 data or as a reference to a Binary.
func DocumentReference(documentReference fhir.DocumentReference) []validation.Validation {
	var validations []validation.Validation

	if documentReference.ResourceType != "DocumentReference" {
		validations = append(validations, validation.Errorf("Resource is not of type DocumentReference"))
	}

	if documentReference.Status == "" {
		validations = append(validations, validation.Errorf("DocumentReference does not contain a status object"))
	} else if documentReference.Status != "current" {
		validations = append(validations, validation.Errorf(
			"DocumentReference status must be current, but was %q", documentReference.Status))
	}

	if documentReference.Type == nil {
		validations = append(validations, validation.Errorf("DocumentReference does not contain a type object"))
	} else if documentReference.Type.Coding == nil {
		validations = append(validations, validation.Errorf("DocumentReference type object does not contain a coding object"))
	} else {
		for _, coding := range documentReference.Type.Coding {
			if coding.Display == "" {
				validations = append(validations, validation.Errorf(
					"DocumentReference type coding object does not contain a display object"))
			}
			if coding.System == "" || coding.Code == "" {
				validations = append(validations, validation.Errorf(
					"DocumentReference type coding object does not contain a system or code object. System was: %s and code was: %s",
					orUndefined(coding.System), orUndefined(coding.Code)))
			} else if coding.System != DocTypeSystem || coding.Code != SykmeldingTypeCode {
				validations = append(validations, validation.Errorf(
					"DocumentReference type coding system must be %q and code must be %q, but was %q and %q",
					DocTypeSystem, SykmeldingTypeCode, coding.System, coding.Code))
			}
		}
	}

	if documentReference.Subject == nil {
		validations = append(validations, validation.Errorf("DocumentReference does not contain a subject object"))
	} else if documentReference.Subject.Reference == "" {
		validations = append(validations, validation.Errorf("DocumentReference subject object does not contain a reference"))
	}

	if documentReference.Author == nil {
		validations = append(validations, validation.Errorf("DocumentReference does not contain an author object"))
	}
	for _, author := range documentReference.Author {
		if author.Reference == "" {
			validations = append(validations, validation.Errorf(
				"DocumentReference author object does not contain a reference to the Practitioner who authored the document"))
		}
	}

	if documentReference.Content == nil {
		validations = append(validations, validation.Errorf("DocumentReference does not contain a content object"))
	}
	for _, content := range documentReference.Content {
		validations = append(validations, checkContent(content)...)
	}

	if documentReference.Context == nil {
		validations = append(validations, validation.Errorf("DocumentReference does not contain a context object"))
	} else if len(documentReference.Context.Encounter) == 0 {
		validations = append(validations, validation.Errorf("DocumentReference context object does not contain an encounter object"))
	}

	return validations
}

func checkContent(content fhir.DocumentReferenceContent) []validation.Validation {
	attachment := content.Attachment
	if attachment == nil {
		return []validation.Validation{
			validation.Errorf("DocumentReference content object does not contain an attachment object"),
		}
	}

	var validations []validation.Validation

	if attachment.Title == "" {
		validations = append(validations, validation.Errorf("DocumentReference content attachment object does not contain a title"))
	}

	switch {
	case attachment.Data == "" && attachment.URL == "":
		validations = append(validations, validation.Errorf(
			`DocumentReference content attachment object does not contain a "data" or "url" object. `+
				`DocumentReference must either have a b64-encoded PDF in the data field, `+
				`or a reference to a Binary on the FHIR-server in the url field, i.e: "Binary/<reference>"`))
	case attachment.URL != "":
		validations = append(validations, validation.Infof(
			`DocumentReference content attachment object contains "url" with a reference to a binary file on the FHIR-server (%s) - all good`,
			attachment.URL))
	case attachment.ContentType == PdfContentType:
		validations = append(validations, validation.Infof(
			`DocumentReference content attachment object contains "data" with b64 encoded PDF - all good`))
	default:
		validations = append(validations, validation.Errorf(
			`DocumentReference content attachment object contains "data" but its contentType is %s, should be %q. `+
				`This is required when sending b64 encoded files in the "data" object.`,
			orUndefined(attachment.ContentType), PdfContentType))
	}

	if attachment.Language == "" {
		validations = append(validations, validation.Errorf("DocumentReference content attachment object does not contain a language object"))
	}

	return validations
}
