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
	_ "embed"
	"html/template"
	"io"
	"strings"

	"github.com/sofcheck/sofcheck/validation"
)

//go:embed report-template.gohtml
var reportTemplate string

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"label":   SeverityLabel,
	"summary": Summary,
	"class": func(severity validation.Severity) string {
		return strings.ToLower(string(severity))
	},
}).Parse(reportTemplate))

// WriteHTML writes report as standalone HTML page.
func WriteHTML(w io.Writer, report Report) error {
	return htmlTmpl.Execute(w, report)
}
