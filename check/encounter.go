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
	"strings"

	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

// EncounterClassCodes are the accepted v3-ActCode classes: ambulatory and
// virtual.
var EncounterClassCodes = []string{"AMB", "VR"}

// Encounter checks the class, subject, participants, period and diagnoses of
// an Encounter.
func Encounter(encounter fhir.Encounter) []validation.Validation {
	var validations []validation.Validation

	if encounter.Class == nil {
		validations = append(validations, validation.Errorf("Encounter object does not contain a class"))
	} else {
		if encounter.Class.System != ActCodeSystem {
			validations = append(validations, validation.Errorf(
				"The Encounter class system must be %q, but was %s", ActCodeSystem, orUndefined(encounter.Class.System)))
		}
		if !slices.Contains(EncounterClassCodes, encounter.Class.Code) {
			validations = append(validations, validation.Errorf(
				"The Encounter class code must be one of %s, but was %s",
				strings.Join(EncounterClassCodes, " | "), orUndefined(encounter.Class.Code)))
		}
	}

	validations = append(validations, checkPatientSubject("Encounter", encounter.Subject)...)

	if len(encounter.Participant) == 0 {
		validations = append(validations, validation.Errorf("Encounter object does not contain a participant"))
	}
	for i, participant := range encounter.Participant {
		if participant.Individual == nil || participant.Individual.Reference == "" {
			validations = append(validations, validation.Errorf(
				"The Encounter participant [%d] does not contain an individual reference", i))
		} else if !strings.Contains(participant.Individual.Reference, "Practitioner") {
			validations = append(validations, validation.Errorf(
				"The Encounter participant [%d] individual must reference a Practitioner, but was %q",
				i, participant.Individual.Reference))
		}
	}

	if encounter.Period == nil {
		validations = append(validations, validation.Errorf("Encounter object does not contain a period"))
	} else if encounter.Period.Start == "" {
		validations = append(validations, validation.Errorf("The Encounter period does not contain a start"))
	}

	if len(encounter.Diagnosis) == 0 {
		validations = append(validations, validation.Errorf("Encounter object does not contain a diagnosis"))
	}
	for i, diagnosis := range encounter.Diagnosis {
		if diagnosis.Condition == nil {
			validations = append(validations, validation.Errorf(
				"The Encounter diagnosis [%d] does not contain a condition reference", i))
			continue
		}
		if diagnosis.Condition.Type != "Condition" {
			validations = append(validations, validation.Errorf(
				"The Encounter diagnosis [%d] condition type must be \"Condition\", but was %s",
				i, orUndefined(diagnosis.Condition.Type)))
		}
		if !strings.Contains(diagnosis.Condition.Reference, "Condition") {
			validations = append(validations, validation.Errorf(
				"The Encounter diagnosis [%d] condition must reference a Condition, but was %s",
				i, orUndefined(diagnosis.Condition.Reference)))
		}
	}

	return validations
}
