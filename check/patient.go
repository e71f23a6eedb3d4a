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

// Patient checks a Patient against the no-basis-Patient profile. The Patient
// must be identified by a national identity number (FNR) or a D-number and
// must have a family and a given name.
func Patient(patient fhir.Patient) []validation.Validation {
	var validations []validation.Validation

	validations = append(validations, checkProfile("Patient", patient.Meta, NoBasisPatientProfile)...)

	if !hasIdentifier(patient.Identifier, FnrSystem) && !hasIdentifier(patient.Identifier, DnrSystem) {
		validations = append(validations,
			validation.Errorf("The Patient does not have a Norwegian national identity number (FNR) from OID %q", FnrSystem),
			validation.Errorf("The Patient does not have a Norwegian D-number from OID %q", DnrSystem))
	}

	validations = append(validations, checkName("Patient", patient.Name)...)

	return validations
}
