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

package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const smartConfiguration = `{
"issuer": "https://idp.example.no",
"jwks_uri": "https://idp.example.no/jwks",
"authorization_endpoint": "https://idp.example.no/authorize",
"grant_types_supported": ["authorization_code"],
"token_endpoint": "https://idp.example.no/token",
"capabilities": ["launch-ehr", "context-ehr-patient", "context-ehr-encounter"],
"code_challenge_methods_supported": ["S256"],
"user_access_brand_bundle": "https://ehr.example.no/brands.json",
"user_access_brand_identifier": "ehr",
"scopes_supported": ["openid", "fhirUser", "launch"],
"response_types_supported": ["code"],
"management_endpoint": "https://idp.example.no/manage",
"introspection_endpoint": "https://idp.example.no/introspect",
"revocation_endpoint": "https://idp.example.no/revoke",
"token_endpoint_auth_methods_supported": ["private_key_jwt"],
"registration_endpoint": "https://idp.example.no/register",
"associated_endpoints": []
}`

const patient = `{
"resourceType": "Patient",
"id": "pat-1",
"meta": {"profile": ["http://hl7.no/fhir/StructureDefinition/no-basis-Patient"]},
"identifier": [{"system": "urn:oid:2.16.578.1.12.4.1.4.1", "value": "13031353453"}],
"name": [{"family": "Nordmann", "given": ["Kari"]}]
}`

const practitioner = `{
"resourceType": "Practitioner",
"id": "prac-1",
"meta": {"profile": ["http://hl7.no/fhir/StructureDefinition/no-basis-Practitioner"]},
"identifier": [
  {"system": "urn:oid:2.16.578.1.12.4.1.4.4", "value": "9144889"},
  {"system": "urn:oid:2.16.578.1.12.4.1.2", "value": "123"}
],
"name": [{"family": "Lege", "given": ["Ola"]}],
"telecom": [{"system": "phone", "value": "+4712345678", "use": "work"}]
}`

const encounter = `{
"resourceType": "Encounter",
"id": "enc-1",
"class": {"system": "http://terminology.hl7.org/CodeSystem/v3-ActCode", "code": "AMB"},
"subject": {"reference": "Patient/pat-1", "type": "Patient"},
"participant": [{"individual": {"reference": "Practitioner/prac-1"}}],
"period": {"start": "2024-05-17T10:00:00+02:00"},
"diagnosis": [{"condition": {"reference": "Condition/cond-1", "type": "Condition"}}]
}`

const condition = `{
"resourceType": "Condition",
"id": "cond-1",
"subject": {"reference": "Patient/pat-1", "type": "Patient"},
"code": {"coding": [{"system": "urn:oid:2.16.578.1.12.4.1.1.7110", "code": "M54.5", "display": "Lumbago"}]}
}`

const documentReference = `{
"resourceType": "DocumentReference",
"id": "doc-1",
"status": "current",
"type": {"coding": [{"system": "urn:oid:2.16.578.1.12.4.1.1.9602", "code": "J01-2", "display": "Sykmeldinger og trygdesaker"}]},
"subject": {"reference": "Patient/pat-1"},
"author": [{"reference": "Practitioner/prac-1"}],
"content": [{"attachment": {"url": "Binary/bin-1", "language": "NO-nb", "title": "Sykmelding"}}],
"context": {"encounter": [{"reference": "Encounter/enc-1"}]}
}`

func searchSet(resources ...string) string {
	entries := make([]string, 0, len(resources))
	for _, resource := range resources {
		entries = append(entries, `{"resource": `+resource+`, "search": {"mode": "match"}}`)
	}
	return `{"resourceType": "Bundle", "type": "searchset", "entry": [` + strings.Join(entries, ",") + `]}`
}

// ehrServer is an in-memory FHIR server of a launch context. Created
// resources are kept and served back.
type ehrServer struct {
	mu          sync.Mutex
	fhirVersion string
	resources   map[string]string
	nextID      int
}

func newEhrServer(t *testing.T) (*ehrServer, *httptest.Server) {
	ehr := &ehrServer{
		fhirVersion: "4.0.1",
		resources: map[string]string{
			"/fhir/.well-known/smart-configuration": smartConfiguration,
			"/fhir/Patient/pat-1":                   patient,
			"/fhir/Practitioner/prac-1":             practitioner,
			"/fhir/Encounter/enc-1":                 encounter,
			"/fhir/Condition":                       searchSet(condition),
			"/fhir/DocumentReference":               searchSet(documentReference),
		},
	}
	server := httptest.NewServer(ehr)
	t.Cleanup(server.Close)
	return ehr, server
}

func (e *ehrServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r.URL.Path == "/fhir/metadata" {
		_, _ = w.Write([]byte(`{"resourceType": "CapabilityStatement", "fhirVersion": "` + e.fhirVersion + `"}`))
		return
	}

	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		var resource map[string]any
		if err := json.Unmarshal(body, &resource); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		e.nextID++
		id := strings.TrimPrefix(r.URL.Path, "/fhir/") + "-" + strconv.Itoa(e.nextID)
		resource["id"] = id
		stored, _ := json.Marshal(resource)
		e.resources[r.URL.Path+"/"+id] = string(stored)
		w.Header().Set("Location", "http://"+r.Host+r.URL.Path+"/"+id+"/_history/1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(stored)
		return
	}

	resource, ok := e.resources[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"resourceType": "OperationOutcome", "issue": [{"severity": "error", "code": "not-found", "diagnostics": "Resource not found"}]}`))
		return
	}
	_, _ = w.Write([]byte(resource))
}

func idToken(t *testing.T, issuer, fhirUser string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"fhirUser": fhirUser,
		"iss":      issuer,
		"aud":      "sofcheck",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

// resetFlags restores the defaults of all flags because the command tree is
// shared by all tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}
