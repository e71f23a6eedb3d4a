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

package fhir

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// A Client is a FHIR client which combines an HTTP client with the base URL of
// a FHIR server and the authentication used for every request.
type Client struct {
	httpClient http.Client
	baseURL    url.URL
	auth       Auth
}

// Auth adds authentication information to a request.
type Auth interface {
	setAuth(req *http.Request)
}

// BasicAuth authenticates requests with HTTP basic authentication.
type BasicAuth struct {
	User     string
	Password string
}

func (a BasicAuth) setAuth(req *http.Request) {
	req.SetBasicAuth(a.User, a.Password)
}

// TokenAuth authenticates requests with a bearer token, usually the access
// token of a SMART launch.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// NewClient creates a new Client with the given base URL and Auth. auth may be
// nil.
func NewClient(fhirServerBaseUrl url.URL, auth Auth) *Client {
	return createClient(fhirServerBaseUrl, auth, &tls.Config{})
}

// NewClientInsecure creates a new Client as NewClient does but disables TLS security checks. I.e. the client will
// accept any connection to a servers without verifying its certificate.
// Use this with great caution as it opens up man-in-the-middle attacks.
func NewClientInsecure(fhirServerBaseUrl url.URL, auth Auth) *Client {
	return createClient(fhirServerBaseUrl, auth, &tls.Config{InsecureSkipVerify: true})
}

// NewClientCa creates a new Client as NewClient does but trusts the
// certificate authority in the PEM file at caCertFilename in addition to the
// system roots.
func NewClientCa(fhirServerBaseUrl url.URL, auth Auth, caCertFilename string) (*Client, error) {
	caCert, err := os.ReadFile(caCertFilename)
	if err != nil {
		return nil, fmt.Errorf("could not read the certificate authority file %s: %w", caCertFilename, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("no certificates found in the certificate authority file %s", caCertFilename)
	}
	return createClient(fhirServerBaseUrl, auth, &tls.Config{RootCAs: pool}), nil
}

func createClient(fhirServerBaseUrl url.URL, auth Auth, tlsConfig *tls.Config) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100
	t.TLSClientConfig = tlsConfig

	return &Client{
		httpClient: http.Client{Transport: t},
		baseURL:    fhirServerBaseUrl,
		auth:       auth,
	}
}

const fhirJson = "application/fhir+json"

// NewCapabilitiesRequest creates a new capabilities interaction request. Uses
// the base URL from the FHIR client and sets JSON Accept header. Otherwise it's
// identical to http.NewRequest.
func (c *Client) NewCapabilitiesRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL.JoinPath("metadata").String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", fhirJson)
	return req, nil
}

// ResolveReference resolves a relative reference like Patient/123 or
// Patient?name=foo against the base URL. Absolute URLs are returned as they
// are.
func (c *Client) ResolveReference(reference string) (*url.URL, error) {
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		return url.ParseRequestURI(reference)
	}
	path, query, _ := strings.Cut(strings.TrimPrefix(reference, "/"), "?")
	_url := c.baseURL.JoinPath(path)
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return nil, fmt.Errorf("invalid query in reference %s: %w", reference, err)
		}
		_url.RawQuery = values.Encode()
	}
	return _url, nil
}

// NewReadRequest creates a new GET request of a reference which is resolved
// with ResolveReference. Used for read and search interactions given as
// relative references.
func (c *Client) NewReadRequest(ctx context.Context, reference string) (*http.Request, error) {
	_url, err := c.ResolveReference(reference)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", _url.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", fhirJson)
	return req, nil
}

// NewCreateRequest creates a new create interaction request for the given
// resource type. contentType defaults to FHIR JSON. The server is asked to
// return the created resource.
func (c *Client) NewCreateRequest(ctx context.Context, resourceType string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL.JoinPath(resourceType).String(), body)
	if err != nil {
		return nil, fmt.Errorf("error while creating a create request: %w", err)
	}
	if contentType == "" {
		contentType = fhirJson
	}
	req.Header.Add("Accept", fhirJson)
	req.Header.Add("Content-Type", contentType)
	req.Header.Add("Prefer", "return=representation")
	return req, nil
}

// Do calls Do on the HTTP client of the FHIR client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.auth != nil {
		c.auth.setAuth(req)
	}

	return c.httpClient.Do(req)
}

// CloseIdleConnections calls CloseIdleConnections on the HTTP client of the
// FHIR client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// ReadCapabilityStatement reads and unmarshals a capability statement.
func ReadCapabilityStatement(r io.Reader) (CapabilityStatement, error) {
	var capabilityStatement CapabilityStatement
	body, err := io.ReadAll(r)
	if err != nil {
		return capabilityStatement, err
	}
	if err := json.Unmarshal(body, &capabilityStatement); err != nil {
		return capabilityStatement, err
	}
	return capabilityStatement, nil
}

// ReadBundle reads and unmarshals a bundle.
func ReadBundle(r io.Reader) (fm.Bundle, error) {
	var bundle fm.Bundle
	body, err := io.ReadAll(r)
	if err != nil {
		return bundle, err
	}
	return fm.UnmarshalBundle(body)
}
