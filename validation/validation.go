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

// Package validation contains the finding model shared by all resource checks
// together with the functions used to rank, group and present findings.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity classifies a Validation. The set of severities is closed.
type Severity string

const (
	Error   Severity = "ERROR"
	Warning Severity = "WARNING"
	Info    Severity = "INFO"
	OK      Severity = "OK"
)

// Severities lists all severities from highest to lowest rank.
var Severities = []Severity{Error, Warning, Info, OK}

// Rank returns the display rank of the severity. Higher ranks are shown first.
// Unknown severities rank below OK.
func (s Severity) Rank() int {
	switch s {
	case Error:
		return 3
	case Warning:
		return 2
	case Info:
		return 1
	case OK:
		return 0
	default:
		return -1
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses the name of a severity case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	s := Severity(strings.ToUpper(strings.TrimSpace(name)))
	if s.Rank() < 0 {
		return "", fmt.Errorf("unknown severity %q, expected one of ERROR, WARNING, INFO or OK", name)
	}
	return s, nil
}

// Validation is a single finding of a check. It can't be changed after
// construction.
type Validation struct {
	message  string
	severity Severity
}

// New creates a Validation with the given message and severity.
func New(message string, severity Severity) Validation {
	return Validation{message: message, severity: severity}
}

// Errorf creates a Validation with severity Error and a formatted message.
func Errorf(format string, a ...interface{}) Validation {
	return New(fmt.Sprintf(format, a...), Error)
}

// Warningf creates a Validation with severity Warning and a formatted message.
func Warningf(format string, a ...interface{}) Validation {
	return New(fmt.Sprintf(format, a...), Warning)
}

// Infof creates a Validation with severity Info and a formatted message.
func Infof(format string, a ...interface{}) Validation {
	return New(fmt.Sprintf(format, a...), Info)
}

func (v Validation) Message() string {
	return v.message
}

func (v Validation) Severity() Severity {
	return v.severity
}

func (v Validation) String() string {
	return fmt.Sprintf("%s: %s", v.severity, v.message)
}

type validationJSON struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

func (v Validation) MarshalJSON() ([]byte, error) {
	return json.Marshal(validationJSON{Severity: v.severity, Message: v.message})
}

func (v *Validation) UnmarshalJSON(data []byte) error {
	var raw validationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	severity, err := ParseSeverity(string(raw.Severity))
	if err != nil {
		return err
	}
	v.message = raw.Message
	v.severity = severity
	return nil
}

// MarshalYAML is used by the YAML report output.
func (v Validation) MarshalYAML() (interface{}, error) {
	return validationJSON{Severity: v.severity, Message: v.message}, nil
}
