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

package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
	"github.com/sofcheck/sofcheck/check"
	"github.com/sofcheck/sofcheck/data"
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

const sykmeldingTypeDisplay = "Sykmeldinger og trygdesaker"

// WriteChecks returns the checks of the write-then-read flows for doc.
// Supported modes are binary, b64 and both.
func WriteChecks(doc data.Document, mode string) ([]Check, error) {
	binary := Check{
		Title:       "DocumentReference with Binary",
		Description: "Creates a Binary and a DocumentReference pointing to it, then reads the DocumentReference back",
		Run: func(ctx context.Context, s Session) []validation.Validation {
			return WriteBinaryDocumentReference(ctx, s, doc)
		},
	}
	b64 := Check{
		Title:       "DocumentReference with base64 data",
		Description: "Creates a DocumentReference with inline base64 data, then reads it back",
		Run: func(ctx context.Context, s Session) []validation.Validation {
			return WriteBase64DocumentReference(ctx, s, doc)
		},
	}

	switch mode {
	case "binary":
		return []Check{binary}, nil
	case "b64":
		return []Check{b64}, nil
	case "both", "":
		return []Check{binary, b64}, nil
	default:
		return nil, fmt.Errorf("invalid mode %q, expected one of binary, b64 or both", mode)
	}
}

// WriteBinaryDocumentReference uploads the content of doc as Binary, creates a
// DocumentReference referencing it and checks the DocumentReference as read
// back from the server.
func WriteBinaryDocumentReference(ctx context.Context, s Session, doc data.Document) []validation.Validation {
	binaryID, err := create(ctx, s, "Binary", CreateBinary(doc))
	if err != nil {
		return fromError("Unable to create Binary", err)
	}

	binaryURL := "Binary/" + binaryID
	attachment := fm.Attachment{
		Url:      &binaryURL,
		Language: stringPtr(doc.Language),
		Title:    stringPtr(doc.Title),
	}
	return writeAndReadBack(ctx, s, doc, attachment)
}

// WriteBase64DocumentReference creates a DocumentReference with the content of
// doc as base64 data and checks it as read back from the server.
func WriteBase64DocumentReference(ctx context.Context, s Session, doc data.Document) []validation.Validation {
	encoded := base64.StdEncoding.EncodeToString(doc.Content)
	attachment := fm.Attachment{
		ContentType: stringPtr(doc.ContentType),
		Data:        &encoded,
		Language:    stringPtr(doc.Language),
		Title:       stringPtr(doc.Title),
	}
	return writeAndReadBack(ctx, s, doc, attachment)
}

func writeAndReadBack(ctx context.Context, s Session, doc data.Document, attachment fm.Attachment) []validation.Validation {
	const label = "Unable to create DocumentReference"
	user := s.User()
	if s.Patient() == "" {
		return fromError(label, "No patient in launch context")
	}
	if user.ResourceType == "" {
		return fromError(label, fmt.Sprintf("Logged-in user is not set. FhirUser claim: %s", user.FhirUser))
	}

	documentReference, err := CreateDocumentReference(doc, attachment, s.Patient(), s.Encounter(),
		user.ResourceType+"/"+user.ID)
	if err != nil {
		return fromError(label, err)
	}
	id, err := create(ctx, s, "DocumentReference", documentReference)
	if err != nil {
		return fromError(label, err)
	}

	var created fhir.DocumentReference
	if err := read(ctx, s, "DocumentReference/"+id, &created); err != nil {
		return fromError("Unable to read created DocumentReference", err)
	}
	return check.DocumentReference(created)
}

// CreateBinary creates the Binary resource holding the content of doc.
func CreateBinary(doc data.Document) fm.Binary {
	encoded := base64.StdEncoding.EncodeToString(doc.Content)
	return fm.Binary{
		ContentType: doc.ContentType,
		Data:        &encoded,
	}
}

// CreateDocumentReference creates a current sick leave DocumentReference with
// attachment as only content. The master identifier is a random UUID.
func CreateDocumentReference(doc data.Document, attachment fm.Attachment, patient string, encounter string,
	author string) (fm.DocumentReference, error) {
	masterIdentifier, err := uuid.NewRandom()
	if err != nil {
		return fm.DocumentReference{}, err
	}

	documentReference := fm.DocumentReference{
		MasterIdentifier: &fm.Identifier{
			System: stringPtr("urn:ietf:rfc:3986"),
			Value:  stringPtr("urn:uuid:" + masterIdentifier.String()),
		},
		Status: fm.DocumentReferenceStatusCurrent,
		Type: &fm.CodeableConcept{
			Coding: []fm.Coding{{
				System:  stringPtr(check.DocTypeSystem),
				Code:    stringPtr(check.SykmeldingTypeCode),
				Display: stringPtr(sykmeldingTypeDisplay),
			}},
		},
		Subject:     &fm.Reference{Reference: stringPtr("Patient/" + patient)},
		Author:      []fm.Reference{{Reference: stringPtr(author)}},
		Description: stringPtr(doc.Description),
		Content:     []fm.DocumentReferenceContent{{Attachment: attachment}},
	}
	if encounter != "" {
		documentReference.Context = &fm.DocumentReferenceContext{
			Encounter: []fm.Reference{{Reference: stringPtr("Encounter/" + encounter)}},
		}
	}
	return documentReference, nil
}

// create posts resource and returns the id of the created resource.
func create(ctx context.Context, s Session, resourceType string, resource any) (string, error) {
	body, err := json.Marshal(resource)
	if err != nil {
		return "", fmt.Errorf("could not serialize the %s: %w", resourceType, err)
	}
	result, err := s.Create(ctx, resourceType, body, "")
	if err != nil {
		return "", err
	}
	if !result.OK {
		if result.OperationOutcome != nil {
			return "", fmt.Errorf("server responded with %s: %s", result.StatusText,
				outcomeDiagnostics(result.OperationOutcome))
		}
		return "", fmt.Errorf("server responded with %s", result.StatusText)
	}
	if result.ID == "" {
		return "", fmt.Errorf("server created the %s but returned no id", resourceType)
	}
	return result.ID, nil
}

func outcomeDiagnostics(outcome *fm.OperationOutcome) string {
	var diagnostics []string
	for _, issue := range outcome.Issue {
		if issue.Diagnostics != nil {
			diagnostics = append(diagnostics, *issue.Diagnostics)
		}
	}
	if len(diagnostics) == 0 {
		return "no diagnostics"
	}
	return strings.Join(diagnostics, "; ")
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
