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

// Package report contains the report of a conformance check run and its
// renderers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sofcheck/sofcheck/util"
	"github.com/sofcheck/sofcheck/validation"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// A Section holds the findings of one check.
type Section struct {
	Title       string                  `json:"title" yaml:"title"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Validations []validation.Validation `json:"validations" yaml:"validations"`
}

// A Group holds the findings of one severity of a section.
type Group struct {
	Severity    validation.Severity
	Validations []validation.Validation
}

// Heading names the group and the number of its findings, e.g. "Error (2)".
func (g Group) Heading() string {
	if g.Severity == validation.OK {
		return SeverityLabel(g.Severity)
	}
	return fmt.Sprintf("%s (%d)", SeverityLabel(g.Severity), len(g.Validations))
}

// Groups splits the findings of the section into error, warning and info
// groups, most severe first. Empty groups are left out. A section without
// findings has a single OK group.
func (s Section) Groups() []Group {
	errs, warnings, infos := validation.Partition(s.Validations)
	var groups []Group
	for _, group := range []Group{
		{validation.Error, errs},
		{validation.Warning, warnings},
		{validation.Info, infos},
	} {
		if len(group.Validations) > 0 {
			groups = append(groups, group)
		}
	}
	if len(groups) == 0 {
		groups = append(groups, Group{validation.OK, validation.Present(nil)})
	}
	return groups
}

// A Report is the result of one run against a server.
type Report struct {
	Server      string         `json:"server,omitempty" yaml:"server,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt" yaml:"generatedAt"`
	FhirRelease int            `json:"fhirRelease,omitempty" yaml:"fhirRelease,omitempty"`
	Sections    []Section      `json:"sections" yaml:"sections"`
	Stats       *util.RunStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Validations returns the findings of all sections in section order.
func (r Report) Validations() []validation.Validation {
	lists := make([][]validation.Validation, 0, len(r.Sections))
	for _, section := range r.Sections {
		lists = append(lists, section.Validations)
	}
	return validation.Merge(lists...)
}

// Highest returns the most severe severity of all findings of the report.
func (r Report) Highest() validation.Severity {
	return validation.Highest(r.Validations())
}

// Read reads a JSON report.
func Read(r io.Reader) (Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return report, fmt.Errorf("could not parse the report: %w", err)
	}
	return report, nil
}

// Write renders report in format to w.
func Write(w io.Writer, report Report, format string) error {
	switch format {
	case FormatText, "":
		return WriteText(w, report)
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatYAML:
		return WriteYAML(w, report)
	case FormatHTML:
		return WriteHTML(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes report as indented JSON.
func WriteJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// WriteYAML writes report as YAML.
func WriteYAML(w io.Writer, report Report) error {
	return yaml.NewEncoder(w).Encode(report)
}
