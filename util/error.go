// Copyright 2019 - 2025 The Samply Community
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

package util

import (
	"fmt"
	"net/http"
	"strings"
	"text/template"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// ErrorResponse represents an error returned from the FHIR server. It is used
// as error value for non-2xx responses.
type ErrorResponse struct {
	StatusCode       int
	URL              string
	OperationOutcome *fm.OperationOutcome
	OtherError       string
}

// Error returns a single line description of the response. Diagnostics and
// details of the operation outcome issues are appended if present.
func (errRes *ErrorResponse) Error() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Received %d", errRes.StatusCode))
	if text := http.StatusText(errRes.StatusCode); text != "" {
		builder.WriteString(" " + text)
	}
	if len(errRes.URL) > 0 {
		builder.WriteString(" when fetching " + errRes.URL)
	}
	var messages []string
	if errRes.OperationOutcome != nil {
		for _, issue := range errRes.OperationOutcome.Issue {
			if issue.Diagnostics != nil {
				messages = append(messages, *issue.Diagnostics)
			} else if issue.Details != nil && issue.Details.Text != nil {
				messages = append(messages, *issue.Details.Text)
			}
		}
	}
	if len(errRes.OtherError) > 0 {
		messages = append(messages, errRes.OtherError)
	}
	if len(messages) > 0 {
		builder.WriteString(": " + strings.Join(messages, "; "))
	}
	return builder.String()
}

var outcomeTemplate, _ = template.New("outcomes").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`{{ define "issue" -}}
Severity    : {{ .Severity.Display }}
Code        : {{ .Code.Definition }}
{{ with .Details -}}
{{ with .Text -}}
Details     : {{ . }}
{{ end -}}
{{ range .Coding -}}
{{ with .Code -}}
Details     : {{ . }}
{{ end -}}
{{ end -}}
{{ end -}}
{{ with .Diagnostics -}}
Diagnostics : {{ . }}
{{ end -}}
{{ with .Expression -}}
Expression  : {{ join . ", " }}
{{ end -}}
{{ end -}}

{{ define "outcome" -}}
{{ range $index, $issue := .Issue -}}
{{ if $index }}---
{{ end -}}
{{ template "issue" $issue -}} 
{{ end -}}
{{ end -}}

{{ range $index, $outcome := . -}}
{{ if $index }}---
{{ end -}}
{{ template "outcome" $outcome -}} 
{{ end -}}
`)

// FmtOperationOutcomes formats the issues of all outcomes in a human readable
// form.
func FmtOperationOutcomes(outcome []*fm.OperationOutcome) string {
	builder := strings.Builder{}

	err := outcomeTemplate.Execute(&builder, outcome)
	if err != nil {
		return err.Error()
	}

	return builder.String()
}

// Indent indents every line of v by spaces.
func Indent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(v, "\n", "\n"+pad)
}
