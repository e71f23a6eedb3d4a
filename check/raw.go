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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sofcheck/sofcheck/validation"
)

// ResourceTypes are the resource types Raw can check.
var ResourceTypes = []string{"Patient", "Practitioner", "Encounter", "Condition", "DocumentReference"}

// Raw decodes the JSON representation of a resource and runs the check
// belonging to its resourceType. An error is returned only if data isn't a
// JSON object or its resourceType has no check.
func Raw(data []byte) (string, []validation.Validation, error) {
	var head struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", nil, fmt.Errorf("could not parse resource: %w", err)
	}

	switch head.ResourceType {
	case "Patient":
		return decodeAndCheck(head.ResourceType, data, Patient)
	case "Practitioner":
		return decodeAndCheck(head.ResourceType, data, Practitioner)
	case "Encounter":
		return decodeAndCheck(head.ResourceType, data, Encounter)
	case "Condition":
		return decodeAndCheck(head.ResourceType, data, Condition)
	case "DocumentReference":
		return decodeAndCheck(head.ResourceType, data, DocumentReference)
	case "":
		return "", nil, fmt.Errorf("resource has no resourceType")
	default:
		return head.ResourceType, nil, fmt.Errorf("no check available for resource type %s, supported are %s",
			head.ResourceType, strings.Join(ResourceTypes, ", "))
	}
}

func decodeAndCheck[T any](resourceType string, data []byte, check func(T) []validation.Validation) (string, []validation.Validation, error) {
	var resource T
	if err := json.Unmarshal(data, &resource); err != nil {
		return resourceType, nil, fmt.Errorf("could not parse %s: %w", resourceType, err)
	}
	return resourceType, check(resource), nil
}
