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

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sofcheck/sofcheck/util"
	"github.com/sofcheck/sofcheck/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() Report {
	return Report{
		Server:      "https://ehr.example.no/fhir",
		GeneratedAt: time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC),
		FhirRelease: 4,
		Sections: []Section{
			{
				Title:       "Patient",
				Description: "The patient in launch context",
				Validations: []validation.Validation{
					validation.Infof("Patient info"),
					validation.Errorf("The Patient does not have a family name"),
				},
			},
			{
				Title:       "Encounter",
				Validations: []validation.Validation{validation.Warningf("<script>alert(1)</script>")},
			},
			{
				Title: "Condition",
			},
		},
		Stats: &util.RunStats{Requests: 3, TotalDuration: 2 * time.Second},
	}
}

func TestReportValidations(t *testing.T) {
	report := testReport()

	assert.Len(t, report.Validations(), 3)
	assert.Equal(t, validation.Error, report.Highest())
	assert.Equal(t, validation.OK, Report{}.Highest())
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testReport()))

	report, err := Read(&buf)

	require.NoError(t, err)
	expected := testReport()
	assert.Equal(t, expected.Server, report.Server)
	assert.True(t, expected.GeneratedAt.Equal(report.GeneratedAt))
	assert.Equal(t, expected.Sections, report.Sections)
	assert.Equal(t, 3, report.Stats.Requests)
}

func TestReadInvalid(t *testing.T) {
	_, err := Read(strings.NewReader("{"))

	assert.ErrorContains(t, err, "could not parse the report")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, testReport()))

	var decoded struct {
		Server   string `yaml:"server"`
		Sections []struct {
			Title       string `yaml:"title"`
			Validations []struct {
				Severity string `yaml:"severity"`
				Message  string `yaml:"message"`
			} `yaml:"validations"`
		} `yaml:"sections"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "https://ehr.example.no/fhir", decoded.Server)
	require.Len(t, decoded.Sections, 3)
	assert.Equal(t, "INFO", decoded.Sections[0].Validations[0].Severity)
	assert.Equal(t, "Patient info", decoded.Sections[0].Validations[0].Message)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, testReport()))
	text := buf.String()

	assert.Contains(t, text, "Conformance report for https://ehr.example.no/fhir")
	assert.Contains(t, text, "FHIR release R4")
	assert.Contains(t, text, "Patient\n-------\n")
	assert.Contains(t, text, "Error (1)\n  The Patient does not have a family name\nInfo (1)\n  Patient info\n")
	assert.Contains(t, text, "Condition\n---------\nOk\n  No issues to report\n")
	assert.Contains(t, text, "1 error, 1 warning, 1 info")
	assert.Contains(t, text, "Requests\t[total, failed]")
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "Error", SeverityLabel(validation.Error))
	assert.Equal(t, "Warning", SeverityLabel(validation.Warning))
	assert.Equal(t, "Ok", SeverityLabel(validation.OK))
}

func TestSectionGroups(t *testing.T) {
	section := Section{Validations: []validation.Validation{
		validation.Infof("i1"), validation.Errorf("e1"), validation.Infof("i2"), validation.Errorf("e2"),
	}}

	groups := section.Groups()

	assert.Equal(t, []Group{
		{validation.Error, []validation.Validation{validation.Errorf("e1"), validation.Errorf("e2")}},
		{validation.Info, []validation.Validation{validation.Infof("i1"), validation.Infof("i2")}},
	}, groups)
	assert.Equal(t, "Error (2)", groups[0].Heading())
}

func TestSectionGroupsWithoutFindings(t *testing.T) {
	presented := Section{Validations: validation.Present(nil)}

	for _, section := range []Section{{}, presented} {
		groups := section.Groups()
		require.Len(t, groups, 1)
		assert.Equal(t, validation.OK, groups[0].Severity)
		assert.Equal(t, "Ok", groups[0].Heading())
		assert.Equal(t, validation.NoIssues, groups[0].Validations[0].Message())
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "0 errors, 0 warnings, 0 infos", Summary(Report{}))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, testReport()))
	html := buf.String()

	assert.Contains(t, html, "<h2>Patient</h2>")
	assert.Contains(t, html, `<p class="description">The patient in launch context</p>`)
	assert.Contains(t, html, `<tr class="error">`)
	assert.Contains(t, html, `<tr><th colspan="2">Warning (1)</th></tr>`)
	assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "No issues to report")
}

func TestWrite(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatYAML, FormatHTML, ""} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, Write(&buf, testReport(), format))
			assert.NotEmpty(t, buf.String())
		})
	}

	assert.ErrorContains(t, Write(&bytes.Buffer{}, testReport(), "pdf"), `unknown output format "pdf"`)
}
