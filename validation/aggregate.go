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

package validation

import (
	"sort"
)

// NoIssues is the message of the synthetic finding shown for an empty list.
const NoIssues = "No issues to report"

// Merge concatenates the given lists in argument order.
func Merge(lists ...[]Validation) []Validation {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	merged := make([]Validation, 0, n)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	return merged
}

// Sort returns a copy of validations ordered by descending severity rank.
// Validations of equal severity keep their relative order.
func Sort(validations []Validation) []Validation {
	sorted := make([]Validation, len(validations))
	copy(sorted, validations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].severity.Rank() > sorted[j].severity.Rank()
	})
	return sorted
}

// Present returns the validations in display order. A nil or empty list is
// presented as a single OK validation.
func Present(validations []Validation) []Validation {
	if len(validations) == 0 {
		return []Validation{New(NoIssues, OK)}
	}
	return Sort(validations)
}

// Partition splits validations into error, warning and info buckets. The
// input order is kept within each bucket. OK validations are dropped.
func Partition(validations []Validation) (errs, warnings, infos []Validation) {
	for _, v := range validations {
		switch v.severity {
		case Error:
			errs = append(errs, v)
		case Warning:
			warnings = append(warnings, v)
		case Info:
			infos = append(infos, v)
		}
	}
	return errs, warnings, infos
}

// Count returns the number of validations per severity.
func Count(validations []Validation) map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, v := range validations {
		counts[v.severity]++
	}
	return counts
}

// Highest returns the highest severity found in validations or OK if there
// are none.
func Highest(validations []Validation) Severity {
	highest := OK
	for _, v := range validations {
		if v.severity.Rank() > highest.Rank() {
			highest = v.severity
		}
	}
	return highest
}

// FromError converts a failure into a single Error validation prefixed by
// label.
func FromError(label string, err interface{}) Validation {
	switch e := err.(type) {
	case error:
		return Errorf("%s: %s", label, e.Error())
	case string:
		return Errorf("%s: %s", label, e)
	default:
		return Errorf("%s: An unknown error occurred: %v", label, err)
	}
}
