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

// Package adapter fetches the resources of a SMART session and hands them to
// the checks. Every adapter returns findings and never fails: fetch errors
// become a single ERROR finding.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/sofcheck/sofcheck/check"
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/smart"
	"github.com/sofcheck/sofcheck/validation"
)

// Session is the capability the adapters need from a SMART session.
type Session interface {
	Request(ctx context.Context, reference string, v any) error
	Search(ctx context.Context, reference string) (fhir.SearchSet, error)
	Create(ctx context.Context, resourceType string, body []byte, contentType string) (smart.CreateResult, error)
	IdToken() jwt.MapClaims
	State(key string) string
	User() smart.User
	UserType() string
	Patient() string
	Encounter() string
	SmartConfiguration(ctx context.Context) (fhir.SmartConfiguration, string, error)
	FhirRelease(ctx context.Context) (int, error)
}

// A Check is one section of a report.
type Check struct {
	Title       string
	Description string
	Run         func(ctx context.Context, s Session) []validation.Validation
}

// ReadChecks returns the checks of all read sections in report order.
// documentReferenceQuery replaces the default DocumentReference search
// parameters if not empty.
func ReadChecks(documentReferenceQuery url.Values) []Check {
	return []Check{
		{
			Title:       "SMART configuration",
			Description: "Fields of the .well-known/smart-configuration document",
			Run:         SmartConfiguration,
		},
		{
			Title:       "ID token",
			Description: "Claims of the ID token requested by the openid and fhirUser scopes",
			Run:         IdToken,
		},
		{
			Title:       "Patient",
			Description: "The patient in launch context",
			Run:         Patient,
		},
		{
			Title:       "Practitioner",
			Description: "The logged-in user referenced by the fhirUser claim",
			Run:         Practitioner,
		},
		{
			Title:       "Encounter",
			Description: "The encounter in launch context",
			Run:         Encounter,
		},
		{
			Title:       "Condition",
			Description: "A diagnosis of the patient in launch context",
			Run:         Condition,
		},
		{
			Title:       "DocumentReference",
			Description: "A sick leave document of the patient in launch context",
			Run: func(ctx context.Context, s Session) []validation.Validation {
				return DocumentReference(ctx, s, documentReferenceQuery)
			},
		},
	}
}

// SmartConfiguration checks the SMART configuration of the server.
func SmartConfiguration(ctx context.Context, s Session) []validation.Validation {
	config, wellKnownURL, err := s.SmartConfiguration(ctx)
	if err != nil {
		return fromError("Unable to fetch SMART configuration", err)
	}
	logFetched(ctx, wellKnownURL, config)
	return check.SmartConfiguration(config, wellKnownURL)
}

// IdToken checks the claims of the ID token of the session.
func IdToken(_ context.Context, s Session) []validation.Validation {
	return check.IdToken(s.IdToken(), s.State(smart.StateClientID), s.State(smart.StateServerURL))
}

// Patient reads and checks the patient in launch context.
func Patient(ctx context.Context, s Session) []validation.Validation {
	const label = "Unable to fetch Patient"
	if s.Patient() == "" {
		return fromError(label, "No patient in launch context")
	}
	var patient fhir.Patient
	if err := read(ctx, s, "Patient/"+s.Patient(), &patient); err != nil {
		return fromError(label, err)
	}
	return check.Patient(patient)
}

// Practitioner reads and checks the logged-in user. The user must be a
// practitioner.
func Practitioner(ctx context.Context, s Session) []validation.Validation {
	const label = "Unable to fetch Practitioner"
	user := s.User()
	if s.UserType() != "Practitioner" {
		return fromError(label, fmt.Sprintf("Logged-in user is not set or not the correct type \"Practitioner\". "+
			"FhirUser claim: %s. ResourceType: %s", user.FhirUser, user.ResourceType))
	}
	var practitioner fhir.Practitioner
	if err := read(ctx, s, user.FhirUser, &practitioner); err != nil {
		return fromError(label, err)
	}
	return check.Practitioner(practitioner)
}

// Encounter reads and checks the encounter in launch context.
func Encounter(ctx context.Context, s Session) []validation.Validation {
	const label = "Unable to fetch Encounter"
	if s.Encounter() == "" {
		return fromError(label, "No encounter in launch context")
	}
	var encounter fhir.Encounter
	if err := read(ctx, s, "Encounter/"+s.Encounter(), &encounter); err != nil {
		return fromError(label, err)
	}
	return check.Encounter(encounter)
}

// Condition reads the condition given in the session state or otherwise
// searches the conditions of the patient in context and checks the first one.
func Condition(ctx context.Context, s Session) []validation.Validation {
	const label = "Unable to fetch Condition"
	var condition fhir.Condition
	if id := s.State(smart.StateCondition); id != "" {
		if err := read(ctx, s, "Condition/"+id, &condition); err != nil {
			return fromError(label, err)
		}
		return check.Condition(condition)
	}

	if s.Patient() == "" {
		return fromError(label, "No patient in launch context")
	}
	query := url.Values{"patient": []string{s.Patient()}}
	if err := searchFirst(ctx, s, "Condition", query, &condition); err != nil {
		return fromError(label, err)
	}
	return check.Condition(condition)
}

// DefaultDocumentReferenceQuery searches the sick leave documents of a
// patient.
func DefaultDocumentReferenceQuery(patient string) url.Values {
	return url.Values{
		"patient": []string{patient},
		"type":    []string{check.DocTypeSystem + "|" + check.SykmeldingTypeCode},
	}
}

// DocumentReference searches the document references of the patient in
// context and checks the first match.
func DocumentReference(ctx context.Context, s Session, query url.Values) []validation.Validation {
	const label = "Unable to fetch DocumentReference"
	if len(query) == 0 {
		if s.Patient() == "" {
			return fromError(label, "No patient in launch context")
		}
		query = DefaultDocumentReferenceQuery(s.Patient())
	}
	var documentReference fhir.DocumentReference
	if err := searchFirst(ctx, s, "DocumentReference", query, &documentReference); err != nil {
		return fromError(label, err)
	}
	return check.DocumentReference(documentReference)
}

func read(ctx context.Context, s Session, reference string, v any) error {
	if err := s.Request(ctx, reference, v); err != nil {
		return err
	}
	logFetched(ctx, reference, v)
	return nil
}

func searchFirst(ctx context.Context, s Session, resourceType string, query url.Values, v any) error {
	reference := resourceType + "?" + query.Encode()
	searchSet, err := s.Search(ctx, reference)
	if err != nil {
		return err
	}
	if len(searchSet.Matches) == 0 {
		return fmt.Errorf("no %s found with search %s", resourceType, reference)
	}
	if err := json.Unmarshal(searchSet.Matches[0], v); err != nil {
		return fmt.Errorf("could not parse the first %s of search %s: %w", resourceType, reference, err)
	}
	logFetched(ctx, reference, v)
	return nil
}

func fromError(label string, err interface{}) []validation.Validation {
	return []validation.Validation{validation.FromError(label, err)}
}

func logFetched(ctx context.Context, reference string, v any) {
	zerolog.Ctx(ctx).Debug().Str("ref", reference).Interface("resource", v).Msg("fetched")
}

// RequireR4 fails if the FHIR server isn't release R4.
func RequireR4(ctx context.Context, s Session) error {
	release, err := s.FhirRelease(ctx)
	if err != nil {
		return err
	}
	if release != 4 {
		return fmt.Errorf("The FHIR server must be version R4 to be compliant. Detected version is %d.", release)
	}
	return nil
}
