// Copyright © 2019 Alexander Kiel <alexander.kiel@life.uni-leipzig.de>
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

package fhir

import (
	"encoding/json"
	"fmt"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// SearchSet holds the matches of a search together with the operation
// outcomes a server may inline into the search result.
type SearchSet struct {
	Total          *int
	Matches        []json.RawMessage
	InlineOutcomes []*fm.OperationOutcome
}

// ReadSearchSet splits the entries of a searchset bundle into matches and
// inline operation outcomes. Entries without search mode count as matches.
func ReadSearchSet(bundle fm.Bundle) (SearchSet, error) {
	searchSet := SearchSet{Total: bundle.Total}
	if bundle.Type != fm.BundleTypeSearchset {
		return searchSet, fmt.Errorf("expected a bundle of type searchset but got %s", bundle.Type.Code())
	}

	for _, e := range bundle.Entry {
		if e.Search != nil && e.Search.Mode != nil && *e.Search.Mode == fm.SearchEntryModeOutcome {
			outcome, err := fm.UnmarshalOperationOutcome(e.Resource)
			if err != nil {
				return searchSet, fmt.Errorf("could not parse an encountered inline outcome from JSON: %w", err)
			}
			searchSet.InlineOutcomes = append(searchSet.InlineOutcomes, &outcome)
			continue
		}
		if len(e.Resource) == 0 {
			continue
		}
		searchSet.Matches = append(searchSet.Matches, e.Resource)
	}

	return searchSet, nil
}
