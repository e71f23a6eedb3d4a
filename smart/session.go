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

// Package smart implements a session against the FHIR server of a completed
// SMART on FHIR launch. The session carries the access token, the ID token
// and the launch context and records statistics about every request.
package smart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
	"github.com/sofcheck/sofcheck/check"
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/util"
)

// Keys understood by Session.State.
const (
	StateServerURL = "serverUrl"
	StateClientID  = "clientId"
	StatePatient   = "patient"
	StateEncounter = "encounter"
	StateCondition = "condition"
)

const wellKnownPath = ".well-known/smart-configuration"

// Launch is the result of a completed SMART launch.
type Launch struct {
	ServerURL string
	ClientID  string
	IdToken   string
	Patient   string
	Encounter string
	Condition string
}

// User is the logged-in user as declared by the fhirUser claim of the ID
// token. ResourceType and ID are empty if the claim is absent or malformed.
type User struct {
	FhirUser     string
	ResourceType string
	ID           string
}

// CreateResult is the outcome of a create interaction.
type CreateResult struct {
	ID               string
	OK               bool
	StatusText       string
	OperationOutcome *fm.OperationOutcome
}

// Session issues requests against the FHIR server of a launch. It is safe for
// concurrent use.
type Session struct {
	client *fhir.Client
	launch Launch
	claims jwt.MapClaims
	logger zerolog.Logger

	mu    sync.Mutex
	stats util.RunStats
}

// NewSession creates a session on top of client. The ID token of the launch is
// decoded without verifying its signature. An empty ID token is not an error,
// a malformed one is.
func NewSession(client *fhir.Client, launch Launch, logger zerolog.Logger) (*Session, error) {
	claims, err := DecodeIdToken(launch.IdToken)
	if err != nil {
		return nil, err
	}
	return &Session{client: client, launch: launch, claims: claims, logger: logger}, nil
}

// DecodeIdToken decodes the claims of token without verifying its signature.
// The signature was already verified by the party that completed the launch.
// Returns nil claims for an empty token.
func DecodeIdToken(token string) (jwt.MapClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("could not decode the ID token: %w", err)
	}
	return claims, nil
}

// WellKnownURL returns the URL of the SMART configuration of the server at
// serverURL with exactly one slash between both parts.
func WellKnownURL(serverURL string) string {
	return strings.TrimRight(serverURL, "/") + "/" + wellKnownPath
}

// IdToken returns the decoded claims of the ID token or nil if the launch
// didn't provide one.
func (s *Session) IdToken() jwt.MapClaims {
	return s.claims
}

// State returns the launch state under key or an empty string.
func (s *Session) State(key string) string {
	switch key {
	case StateServerURL:
		return s.launch.ServerURL
	case StateClientID:
		return s.launch.ClientID
	case StatePatient:
		return s.launch.Patient
	case StateEncounter:
		return s.launch.Encounter
	case StateCondition:
		return s.launch.Condition
	default:
		return ""
	}
}

// User returns the logged-in user.
func (s *Session) User() User {
	fhirUser, _ := s.claims["fhirUser"].(string)
	user := User{FhirUser: fhirUser}
	if resourceType, id, ok := check.ParseFhirUser(fhirUser); ok {
		user.ResourceType = resourceType
		user.ID = id
	}
	return user
}

// UserType returns the resource type the fhirUser claim refers to.
func (s *Session) UserType() string {
	return s.User().ResourceType
}

// Patient returns the id of the patient in context.
func (s *Session) Patient() string {
	return s.launch.Patient
}

// Encounter returns the id of the encounter in context.
func (s *Session) Encounter() string {
	return s.launch.Encounter
}

// Request reads reference, which is relative to the server base or an
// absolute URL, and decodes the JSON response into v. Non-2xx responses are
// returned as *util.ErrorResponse.
func (s *Session) Request(ctx context.Context, reference string, v any) error {
	req, err := s.client.NewReadRequest(ctx, reference)
	if err != nil {
		return fmt.Errorf("error while creating a request for %s: %w", reference, err)
	}

	resp, err := s.do(req, reference)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.body, v); err != nil {
		return fmt.Errorf("could not parse the response of %s: %w", reference, err)
	}
	return nil
}

// Search reads the searchset bundle at reference and returns its matches.
// Inline operation outcomes are added to the run statistics.
func (s *Session) Search(ctx context.Context, reference string) (fhir.SearchSet, error) {
	var raw json.RawMessage
	if err := s.Request(ctx, reference, &raw); err != nil {
		return fhir.SearchSet{}, err
	}
	bundle, err := fhir.ReadBundle(bytes.NewReader(raw))
	if err != nil {
		return fhir.SearchSet{}, fmt.Errorf("could not parse the bundle of %s: %w", reference, err)
	}
	searchSet, err := fhir.ReadSearchSet(bundle)
	if err != nil {
		return searchSet, fmt.Errorf("could not read the search result of %s: %w", reference, err)
	}

	if len(searchSet.InlineOutcomes) > 0 {
		s.mu.Lock()
		s.stats.InlineOperationOutcomes = append(s.stats.InlineOperationOutcomes, searchSet.InlineOutcomes...)
		s.mu.Unlock()
	}
	return searchSet, nil
}

// Create posts body as new resource of resourceType. A response which isn't
// 2xx is no error but a CreateResult which is not OK. The id of the created
// resource is taken from the returned resource or from the Location header.
func (s *Session) Create(ctx context.Context, resourceType string, body []byte, contentType string) (CreateResult, error) {
	req, err := s.client.NewCreateRequest(ctx, resourceType, bytes.NewReader(body), contentType)
	if err != nil {
		return CreateResult{}, err
	}

	resp, err := s.do(req, resourceType)
	var errRes *util.ErrorResponse
	if errors.As(err, &errRes) {
		return CreateResult{
			StatusText:       fmt.Sprintf("%d %s", errRes.StatusCode, http.StatusText(errRes.StatusCode)),
			OperationOutcome: errRes.OperationOutcome,
		}, nil
	} else if err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{OK: true, StatusText: resp.status}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err == nil {
		result.ID = created.ID
	}
	if result.ID == "" {
		result.ID = idFromLocation(resp.location, resourceType)
	}
	return result, nil
}

// SmartConfiguration fetches the SMART configuration document of the server.
// Returns the URL it was fetched from as well.
func (s *Session) SmartConfiguration(ctx context.Context) (fhir.SmartConfiguration, string, error) {
	var config fhir.SmartConfiguration
	wellKnownURL := WellKnownURL(s.launch.ServerURL)
	err := s.Request(ctx, wellKnownURL, &config)
	return config, wellKnownURL, err
}

// FhirRelease detects the major FHIR release of the server from the
// fhirVersion of its capability statement. Returns 0 for unknown versions.
func (s *Session) FhirRelease(ctx context.Context) (int, error) {
	req, err := s.client.NewCapabilitiesRequest(ctx)
	if err != nil {
		return 0, err
	}
	resp, err := s.do(req, "metadata")
	if err != nil {
		return 0, fmt.Errorf("could not fetch the capability statement: %w", err)
	}
	capabilityStatement, err := fhir.ReadCapabilityStatement(bytes.NewReader(resp.body))
	if err != nil {
		return 0, fmt.Errorf("could not parse the capability statement: %w", err)
	}
	return FhirRelease(capabilityStatement.FhirVersion), nil
}

var fhirReleases = map[string]int{
	"0.4.0": 2, "0.5.0": 2,
	"1.0.0": 2, "1.0.1": 2, "1.0.2": 2,
	"1.1.0": 3, "1.4.0": 3, "1.6.0": 3, "1.8.0": 3,
	"3.0.0": 3, "3.0.1": 3, "3.0.2": 3,
	"3.3.0": 4, "3.5.0": 4,
	"4.0.0": 4, "4.0.1": 4,
	"4.3.0": 4,
	"5.0.0": 5,
}

// FhirRelease maps a FHIR version like 4.0.1 to its major release. Returns 0
// for unknown versions.
func FhirRelease(fhirVersion string) int {
	return fhirReleases[strings.TrimSpace(fhirVersion)]
}

// Stats returns a copy of the statistics of all requests issued so far.
func (s *Session) Stats() util.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.RequestDurations = append([]float64(nil), s.stats.RequestDurations...)
	stats.InlineOperationOutcomes = append([]*fm.OperationOutcome(nil), s.stats.InlineOperationOutcomes...)
	return stats
}

// CloseIdleConnections closes idle connections of the underlying client.
func (s *Session) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

type response struct {
	status   string
	location string
	body     []byte
}

// do executes req and reads the whole response body. Non-2xx responses are
// turned into *util.ErrorResponse carrying the operation outcome of the
// server if there is one.
func (s *Session) do(req *http.Request, reference string) (*response, error) {
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.record(time.Since(start), 0, true)
		s.logger.Debug().Err(err).Str("ref", reference).Msg("request failed")
		return nil, fmt.Errorf("error while requesting %s: %w", reference, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	failed := err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300
	s.record(duration, len(body), failed)
	s.logger.Debug().
		Str("method", req.Method).
		Str("ref", reference).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		RawJSON("resource", loggableJSON(body)).
		Msg("request")
	if err != nil {
		return nil, fmt.Errorf("error while reading the response of %s: %w", reference, err)
	}

	if failed {
		errRes := &util.ErrorResponse{StatusCode: resp.StatusCode, URL: req.URL.String()}
		if outcome, err := fm.UnmarshalOperationOutcome(body); err == nil && len(outcome.Issue) > 0 {
			errRes.OperationOutcome = &outcome
		}
		return nil, errRes
	}

	return &response{status: resp.Status, location: resp.Header.Get("Location"), body: body}, nil
}

func (s *Session) record(duration time.Duration, bytesIn int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Requests++
	if failed {
		s.stats.FailedRequests++
	}
	s.stats.RequestDurations = append(s.stats.RequestDurations, duration.Seconds())
	s.stats.TotalBytesIn += int64(bytesIn)
}

func loggableJSON(body []byte) []byte {
	if json.Valid(body) {
		return body
	}
	return []byte("null")
}

// idFromLocation extracts the id from a Location header like
// http://server/fhir/Binary/123/_history/1.
func idFromLocation(location string, resourceType string) string {
	location = strings.TrimSuffix(location, "/")
	if i := strings.Index(location, "/_history/"); i >= 0 {
		location = location[:i]
	}
	if path.Base(path.Dir(location)) != resourceType {
		return ""
	}
	return path.Base(location)
}
