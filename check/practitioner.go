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
	"slices"

	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

var (
	telecomSystems = []string{"phone", "fax", "email", "pager", "url", "sms", "other"}
	telecomUses    = []string{"home", "work", "temp", "old", "mobile"}
)

// Practitioner checks a Practitioner against the no-basis-Practitioner
// profile. An HPR number is required, a HER-id is recommended.
func Practitioner(practitioner fhir.Practitioner) []validation.Validation {
	var validations []validation.Validation

	validations = append(validations, checkProfile("Practitioner", practitioner.Meta, NoBasisPractitionerProfile)...)

	if !hasIdentifier(practitioner.Identifier, HprSystem) {
		validations = append(validations, validation.Errorf(
			"The Practitioner does not have a Norwegian Health Personnel Record number (HPR) from OID %q", HprSystem))
	} else if !hasIdentifier(practitioner.Identifier, HerSystem) {
		validations = append(validations, validation.Infof(
			"The Practitioner does not have a Norwegian HER-id from OID %q", HerSystem))
	}

	validations = append(validations, checkName("Practitioner", practitioner.Name)...)

	if len(practitioner.Telecom) == 0 {
		validations = append(validations, validation.Errorf("The Practitioner does not have a telecom property"))
	}
	for i, telecom := range practitioner.Telecom {
		if !slices.Contains(telecomSystems, telecom.System) {
			validations = append(validations, validation.Errorf(
				"The Practitioner telecom [%d] does not have a valid system: %s", i, orUndefined(telecom.System)))
		}
		if telecom.Value == "" {
			validations = append(validations, validation.Errorf(
				"The Practitioner telecom [%d] does not have a value", i))
		}
		if !slices.Contains(telecomUses, telecom.Use) {
			validations = append(validations, validation.Warningf(
				"The Practitioner telecom [%d] does not have a valid use: %s", i, orUndefined(telecom.Use)))
		}
	}

	return validations
}
