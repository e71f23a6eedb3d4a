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

// Condition checks that a Condition refers to a Patient and is coded with
// ICD-10 or ICPC-2.
func Condition(condition fhir.Condition) []validation.Validation {
	var validations []validation.Validation

	if condition.ResourceType != "Condition" {
		validations = append(validations, validation.Errorf("Resource is not of type Condition"))
	}

	validations = append(validations, checkPatientSubject("Condition", condition.Subject)...)

	if condition.Code == nil {
		validations = append(validations, validation.Errorf("Condition object does not contain a code reference"))
	} else if condition.Code.Coding == nil {
		validations = append(validations, validation.Errorf("The Condition code object does not contain a coding reference"))
	} else {
		var diagnosisCodings []fhir.Coding
		for _, coding := range condition.Code.Coding {
			if coding.System == Icd10System || coding.System == Icpc2System {
				diagnosisCodings = append(diagnosisCodings, coding)
			}
		}

		if len(diagnosisCodings) == 0 {
			validations = append(validations, validation.Errorf(
				"The Condition code object does not contain a coding from ICD-10 (%q) or ICPC-2 (%q)",
				Icd10System, Icpc2System))
		}

		for _, coding := range diagnosisCodings {
			if coding.Code == "" {
				validations = append(validations, validation.Errorf(
					"The Condition coding object with system %q does not contain a code", coding.System))
			}
			if coding.Display == "" {
				validations = append(validations, validation.Warningf(
					"The Condition coding object with system %q does not contain a display name", coding.System))
			}
		}
	}

	return validations
}
