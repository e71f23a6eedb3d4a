/*
Copyright © 2019 Alexander Kiel <alexander.kiel@life.uni-leipzig.de>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fhir contains a FHIR client and structs for FHIR resources usable
// with JSON marshalling.
//
// The resource structs only carry the elements inspected by the checks. Every
// element is optional: nested elements are pointers, repeated elements are
// slices and primitives are empty when absent. Codes are plain strings so that
// invalid codes survive decoding and can be reported. Decoding is lenient: an
// element of the wrong JSON type is treated as absent instead of failing the
// whole resource.
package fhir

import (
	"bytes"
	"encoding/json"
)

// https://www.hl7.org/fhir/capabilitystatement.html
type CapabilityStatement struct {
	FhirVersion string `json:"fhirVersion,omitempty"`
}

// SmartConfiguration is the .well-known/smart-configuration document kept as
// raw elements. Only the presence of elements is checked, so their JSON types
// don't matter.
//
// https://hl7.org/fhir/smart-app-launch/conformance.html#metadata
type SmartConfiguration map[string]json.RawMessage

// Has reports whether the element name is present. Missing elements, null and
// the empty string count as absent.
func (c SmartConfiguration) Has(name string) bool {
	raw, ok := c[name]
	if !ok {
		return false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`:
		return false
	}
	return true
}

// https://www.hl7.org/fhir/resource.html#Meta
type Meta struct {
	Profile []string `json:"profile,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#Identifier
type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#HumanName
type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#ContactPoint
type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

// https://www.hl7.org/fhir/references.html#Reference
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#Coding
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#CodeableConcept
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#Period
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// https://www.hl7.org/fhir/datatypes.html#Attachment
type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	Language    string `json:"language,omitempty"`
	Data        string `json:"data,omitempty"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
}

// https://www.hl7.org/fhir/patient.html
type Patient struct {
	ResourceType string       `json:"resourceType,omitempty"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
}

// https://www.hl7.org/fhir/practitioner.html
type Practitioner struct {
	ResourceType string         `json:"resourceType,omitempty"`
	ID           string         `json:"id,omitempty"`
	Meta         *Meta          `json:"meta,omitempty"`
	Identifier   []Identifier   `json:"identifier,omitempty"`
	Name         []HumanName    `json:"name,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
}

// https://www.hl7.org/fhir/encounter-definitions.html#Encounter.participant
type EncounterParticipant struct {
	Individual *Reference `json:"individual,omitempty"`
}

// https://www.hl7.org/fhir/encounter-definitions.html#Encounter.diagnosis
type EncounterDiagnosis struct {
	Condition *Reference `json:"condition,omitempty"`
}

// https://www.hl7.org/fhir/encounter.html
type Encounter struct {
	ResourceType string                 `json:"resourceType,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Class        *Coding                `json:"class,omitempty"`
	Subject      *Reference             `json:"subject,omitempty"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
	Period       *Period                `json:"period,omitempty"`
	Diagnosis    []EncounterDiagnosis   `json:"diagnosis,omitempty"`
}

// https://www.hl7.org/fhir/condition.html
type Condition struct {
	ResourceType string           `json:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty"`
	Subject      *Reference       `json:"subject,omitempty"`
	Code         *CodeableConcept `json:"code,omitempty"`
}

// https://www.hl7.org/fhir/documentreference-definitions.html#DocumentReference.content
type DocumentReferenceContent struct {
	Attachment *Attachment `json:"attachment,omitempty"`
}

// https://www.hl7.org/fhir/documentreference-definitions.html#DocumentReference.context
type DocumentReferenceContext struct {
	Encounter []Reference `json:"encounter,omitempty"`
}

// https://www.hl7.org/fhir/documentreference.html
type DocumentReference struct {
	ResourceType string                     `json:"resourceType,omitempty"`
	ID           string                     `json:"id,omitempty"`
	Status       string                     `json:"status,omitempty"`
	Type         *CodeableConcept           `json:"type,omitempty"`
	Subject      *Reference                 `json:"subject,omitempty"`
	Author       []Reference                `json:"author,omitempty"`
	Content      []DocumentReferenceContent `json:"content,omitempty"`
	Context      *DocumentReferenceContext  `json:"context,omitempty"`
}

func (r *CapabilityStatement) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Meta) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Identifier) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *HumanName) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *ContactPoint) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Reference) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Coding) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *CodeableConcept) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Period) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Attachment) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Patient) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Practitioner) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *EncounterParticipant) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *EncounterDiagnosis) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Encounter) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *Condition) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *DocumentReferenceContent) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *DocumentReferenceContext) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}

func (r *DocumentReference) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, r)
}
