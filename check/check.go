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

// Package check contains one pure check function per resource kind. A check
// takes an already fetched resource and returns its findings in check order.
// Checks never fail: an absent element is a finding, not an error.
//
// The rules follow the HL7 Norway no-basis profiles and the requirements NAV
// puts on EHR systems integrating the sick leave ("sykmelding") application.
package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

// Norwegian identifier and code systems.
//
// https://www.ehelse.no/teknisk-dokumentasjon/oid-identifikatorserier-i-helse-og-omsorgstjenesten
const (
	FnrSystem     = "urn:oid:2.16.578.1.12.4.1.4.1"
	DnrSystem     = "urn:oid:2.16.578.1.12.4.1.4.2"
	HprSystem     = "urn:oid:2.16.578.1.12.4.1.4.4"
	HerSystem     = "urn:oid:2.16.578.1.12.4.1.2"
	Icd10System   = "urn:oid:2.16.578.1.12.4.1.1.7110"
	Icpc2System   = "urn:oid:2.16.578.1.12.4.1.1.7170"
	DocTypeSystem = "urn:oid:2.16.578.1.12.4.1.1.9602"
	ActCodeSystem = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
)

const (
	NoBasisPatientProfile      = "http://hl7.no/fhir/StructureDefinition/no-basis-Patient"
	NoBasisPractitionerProfile = "http://hl7.no/fhir/StructureDefinition/no-basis-Practitioner"
)

// SykmeldingTypeCode is the document type code of a sick leave in DocTypeSystem.
const SykmeldingTypeCode = "J01-2"

func checkProfile(resourceType string, meta *fhir.Meta, profile string) []validation.Validation {
	if meta == nil {
		return []validation.Validation{validation.Errorf("%s object does not contain a meta reference", resourceType)}
	} else if len(meta.Profile) == 0 {
		return []validation.Validation{validation.Errorf("The %s Meta object does not contain a profile reference", resourceType)}
	} else if !slices.Contains(meta.Profile, profile) {
		return []validation.Validation{validation.Errorf("The %s must be of type %s, but had profile(s) %v",
			resourceType, profileName(profile), meta.Profile)}
	}
	return nil
}

func profileName(profile string) string {
	return profile[strings.LastIndex(profile, "/")+1:]
}

func hasIdentifier(identifiers []fhir.Identifier, system string) bool {
	return slices.ContainsFunc(identifiers, func(id fhir.Identifier) bool {
		return id.System == system
	})
}

func checkName(resourceType string, names []fhir.HumanName) []validation.Validation {
	if len(names) == 0 {
		return []validation.Validation{validation.Errorf("The %s does not have a name property", resourceType)}
	}
	if slices.ContainsFunc(names, func(n fhir.HumanName) bool { return n.Family != "" && len(n.Given) > 0 }) {
		return nil
	}

	var validations []validation.Validation
	name := names[0]
	if name.Family == "" {
		validations = append(validations, validation.Errorf("The %s does not have a family name", resourceType))
	}
	if len(name.Given) == 0 {
		validations = append(validations, validation.Errorf("The %s does not have given name(s)", resourceType))
	}
	return validations
}

func checkPatientSubject(resourceType string, subject *fhir.Reference) []validation.Validation {
	if subject == nil {
		return []validation.Validation{validation.Errorf("%s object does not contain a subject reference", resourceType)}
	} else if subject.Reference == "" {
		return []validation.Validation{validation.Errorf("The %s subject object does not contain a reference", resourceType)}
	} else if subject.Type == "" {
		return []validation.Validation{validation.Errorf("The %s subject object does not contain a type", resourceType)}
	} else if !strings.Contains(subject.Type, "Patient") {
		return []validation.Validation{validation.Errorf("The %s subject must be of type Patient, but was %q", resourceType, subject.Type)}
	}
	return nil
}

func orUndefined(s string) string {
	if s == "" {
		return "undefined"
	}
	return fmt.Sprintf("%q", s)
}
