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
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/sofcheck/sofcheck/validation"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const textTemplate = `Conformance report{{with .Server}} for {{.}}{{end}}
Generated at {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}{{with .FhirRelease}}, FHIR release R{{.}}{{end}}
{{range .Sections}}
{{.Title}}
{{underline .Title}}
{{range .Groups}}{{.Heading}}
{{range .Validations}}  {{.Message}}
{{end}}{{end}}{{end}}
{{summary .}}
{{with .Stats}}
{{.}}{{end}}`

var titleCaser = cases.Title(language.English)

// SeverityLabel returns the display label of severity, e.g. Error for ERROR.
func SeverityLabel(severity validation.Severity) string {
	return titleCaser.String(string(severity))
}

// Summary counts the findings of all sections by severity.
func Summary(report Report) string {
	counts := validation.Count(report.Validations())
	parts := make([]string, 0, len(validation.Severities))
	for _, severity := range validation.Severities {
		if severity == validation.OK {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", counts[severity], plural(SeverityLabel(severity), counts[severity])))
	}
	return strings.Join(parts, ", ")
}

func plural(label string, n int) string {
	if n == 1 {
		return strings.ToLower(label)
	}
	return strings.ToLower(label) + "s"
}

var textFuncs = template.FuncMap{
	"summary": Summary,
	"underline": func(s string) string {
		return strings.Repeat("-", len(s))
	},
}

var textTmpl = template.Must(template.New("text").Funcs(textFuncs).Parse(textTemplate))

// WriteText writes report as plain text. The findings of a section are grouped
// by severity, most severe first.
func WriteText(w io.Writer, report Report) error {
	return textTmpl.Execute(w, report)
}
