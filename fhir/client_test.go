// Copyright 2019 - 2025 The Samply Community
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fhir

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, rawURL string, auth Auth) *Client {
	baseURL, err := url.ParseRequestURI(rawURL)
	require.NoError(t, err)
	return NewClient(*baseURL, auth)
}

func TestBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		user, password, ok := req.BasicAuth()
		if !ok || user != "foo" || password != "bar" {
			res.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, BasicAuth{User: "foo", Password: "bar"})

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer secret-token" {
			res.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, TokenAuth{Token: "secret-token"})

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWithoutAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if len(req.Header.Get("Authorization")) != 0 {
			res.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewCapabilitiesRequest(t *testing.T) {
	client := newTestClient(t, "http://localhost:8080/some-path", nil)

	req, err := client.NewCapabilitiesRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/some-path/metadata", req.URL.Path)
	assert.Equal(t, "application/fhir+json", req.Header.Get("Accept"))
}

func TestResolveReference(t *testing.T) {
	client := newTestClient(t, "http://localhost:8080/fhir", nil)

	tests := []struct {
		name      string
		reference string
		want      string
	}{
		{"Relative", "Patient/123", "http://localhost:8080/fhir/Patient/123"},
		{"LeadingSlash", "/Patient/123", "http://localhost:8080/fhir/Patient/123"},
		{"Absolute", "https://other.example.no/fhir/Patient/1", "https://other.example.no/fhir/Patient/1"},
		{"Search", "DocumentReference?patient=123&type=urn:oid:2.16.578.1.12.4.1.1.9602|J01-2",
			"http://localhost:8080/fhir/DocumentReference?patient=123&type=urn%3Aoid%3A2.16.578.1.12.4.1.1.9602%7CJ01-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := client.ResolveReference(tt.reference)

			require.NoError(t, err)
			assert.Equal(t, tt.want, resolved.String())
		})
	}
}

func TestResolveReferenceInvalidQuery(t *testing.T) {
	client := newTestClient(t, "http://localhost:8080/fhir", nil)

	_, err := client.ResolveReference("Patient?name=%zz")

	assert.ErrorContains(t, err, "invalid query")
}

func TestNewReadRequest(t *testing.T) {
	client := newTestClient(t, "http://localhost:8080/some-path", nil)

	req, err := client.NewReadRequest(context.Background(), "Encounter/enc-1")
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/some-path/Encounter/enc-1", req.URL.Path)
	assert.Equal(t, "application/fhir+json", req.Header.Get("Accept"))
}

func TestNewCreateRequest(t *testing.T) {
	client := newTestClient(t, "http://localhost:8080/some-path", nil)

	t.Run("DefaultContentType", func(t *testing.T) {
		req, err := client.NewCreateRequest(context.Background(), "DocumentReference", strings.NewReader("{}"), "")
		require.NoError(t, err)

		assert.Equal(t, "POST", req.Method)
		assert.Equal(t, "/some-path/DocumentReference", req.URL.Path)
		assert.Equal(t, "application/fhir+json", req.Header.Get("Content-Type"))
		assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, "{}", string(body))
	})

	t.Run("BinaryContentType", func(t *testing.T) {
		req, err := client.NewCreateRequest(context.Background(), "Binary", strings.NewReader("%PDF"), "application/pdf")
		require.NoError(t, err)

		assert.Equal(t, "/some-path/Binary", req.URL.Path)
		assert.Equal(t, "application/pdf", req.Header.Get("Content-Type"))
	})
}

func TestReadCapabilityStatement(t *testing.T) {
	capabilityStatement, err := ReadCapabilityStatement(strings.NewReader(`{"resourceType":"CapabilityStatement","fhirVersion":"4.0.1"}`))

	require.NoError(t, err)
	assert.Equal(t, "4.0.1", capabilityStatement.FhirVersion)
}

func TestReadCapabilityStatementInvalid(t *testing.T) {
	_, err := ReadCapabilityStatement(strings.NewReader(`<html>`))

	assert.Error(t, err)
}

func TestClientSecurity(t *testing.T) {
	crt, key, err := createSelfSignedCertificate()
	if err != nil {
		t.Fatalf("could not create self-signed certificate: %v", err)
	}

	server := httptest.NewUnstartedServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.WriteHeader(http.StatusOK)
	}))

	tlsCrt := tls.Certificate{
		Certificate: [][]byte{crt.Raw},
		Leaf:        crt,
		PrivateKey:  key,
	}

	server.TLS = &tls.Config{
		Certificates: []tls.Certificate{tlsCrt},
	}
	server.StartTLS()
	defer server.Close()

	baseUrl, _ := url.ParseRequestURI(server.URL)

	t.Run("ClientWithEnabledSecurityFailsOnSelfSignedCertificate", func(t *testing.T) {
		req, _ := http.NewRequest("GET", server.URL, nil)
		client := NewClient(*baseUrl, nil)
		_, err := client.Do(req)
		assert.NotNil(t, err, "expected request to fail")
	})

	t.Run("ClientWithDisabledSecuritySucceedsOnSelfSignedCertificate", func(t *testing.T) {
		req, _ := http.NewRequest("GET", server.URL, nil)
		client := NewClientInsecure(*baseUrl, nil)
		_, err := client.Do(req)
		assert.Nil(t, err, "expected request to succeed")
	})

	t.Run("ClientWithCertificateAuthoritySucceeds", func(t *testing.T) {
		caFile := filepath.Join(t.TempDir(), "ca.pem")
		pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: crt.Raw})
		require.NoError(t, os.WriteFile(caFile, pemBytes, 0600))

		client, err := NewClientCa(*baseUrl, nil, caFile)
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", server.URL, nil)
		_, err = client.Do(req)
		assert.Nil(t, err, "expected request to succeed")
	})
}

func TestNewClientCaErrors(t *testing.T) {
	baseUrl, _ := url.ParseRequestURI("https://localhost:8443/fhir")

	t.Run("MissingFile", func(t *testing.T) {
		_, err := NewClientCa(*baseUrl, nil, filepath.Join(t.TempDir(), "missing.pem"))
		assert.ErrorContains(t, err, "could not read the certificate authority file")
	})

	t.Run("NoCertificates", func(t *testing.T) {
		caFile := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(caFile, []byte("not a certificate"), 0600))

		_, err := NewClientCa(*baseUrl, nil, caFile)
		assert.ErrorContains(t, err, "no certificates found")
	})
}

func createSelfSignedCertificate() (*x509.Certificate, *ecdsa.PrivateKey, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("could not generate a key pair: %v", err)
	}

	certificateTemplate := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"sofcheck Test"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Minute * 10),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certificate, err := x509.CreateCertificate(rand.Reader, &certificateTemplate, &certificateTemplate,
		&privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("could not generate self-signed certificate: %v", err)
	}

	selfSignedCertificate, err := x509.ParseCertificate(certificate)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse parse self-signed certificate: %v", err)
	}

	return selfSignedCertificate, privateKey, nil
}
