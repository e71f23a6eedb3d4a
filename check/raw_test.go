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
	"testing"

	"github.com/sofcheck/sofcheck/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaw(t *testing.T) {
	t.Run("Patient", func(t *testing.T) {
		resourceType, validations, err := Raw([]byte(`{"resourceType": "Patient", "meta": {"profile": ["` +
			NoBasisPatientProfile + `"]}, "identifier": [{"system": "` + FnrSystem + `", "value": "1"}], ` +
			`"name": [{"family": "Nordmann", "given": ["Kari"]}]}`))

		require.NoError(t, err)
		assert.Equal(t, "Patient", resourceType)
		assert.Empty(t, validations)
	})

	t.Run("Condition with invalid code", func(t *testing.T) {
		resourceType, validations, err := Raw([]byte(`{"resourceType": "Condition", "code": {"coding": [{"system": "foo"}]}}`))

		require.NoError(t, err)
		assert.Equal(t, "Condition", resourceType)
		assert.Len(t, validations, 2)
	})

	t.Run("unsupported resource type", func(t *testing.T) {
		resourceType, _, err := Raw([]byte(`{"resourceType": "Observation"}`))

		assert.Equal(t, "Observation", resourceType)
		assert.EqualError(t, err, "no check available for resource type Observation, "+
			"supported are Patient, Practitioner, Encounter, Condition, DocumentReference")
	})

	t.Run("no resource type", func(t *testing.T) {
		_, _, err := Raw([]byte(`{}`))

		assert.EqualError(t, err, "resource has no resourceType")
	})

	t.Run("not JSON", func(t *testing.T) {
		_, _, err := Raw([]byte(`foo`))

		assert.ErrorContains(t, err, "could not parse resource")
	})

	t.Run("wrong element type", func(t *testing.T) {
		resourceType, validations, err := Raw([]byte(`{"resourceType": "Encounter", "class": "AMB"}`))

		require.NoError(t, err)
		assert.Equal(t, "Encounter", resourceType)
		assert.Contains(t, validations, validation.Errorf("Encounter object does not contain a class"))
	})
}
