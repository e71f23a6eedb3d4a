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

package check

import (
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sofcheck/sofcheck/validation"
)

// FhirUserResourceTypes are the resource types a fhirUser claim may refer to.
var FhirUserResourceTypes = []string{"Practitioner", "Patient", "RelatedPerson"}

// ParseFhirUser splits a fhirUser claim into resource type and id. The claim
// may be absolute (e.g. https://epj.example.no/fhir/Practitioner/123), so only
// the last two segments are used. ok is false if the claim doesn't end in
// {resourceType}/{resourceId} with a known resource type and a non-blank id.
func ParseFhirUser(fhirUser string) (resourceType string, id string, ok bool) {
	segments := strings.Split(fhirUser, "/")
	if len(segments) < 2 {
		return "", "", false
	}
	resourceType = segments[len(segments)-2]
	id = segments[len(segments)-1]
	if !slices.Contains(FhirUserResourceTypes, resourceType) || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return resourceType, id, true
}

// IdToken checks the claims of the ID token requested by the openid, profile
// and fhirUser scopes. clientID is the client id the token was requested for
// and serverURL the base URL of the FHIR server the launch was done against.
// nil claims mean that no ID token was received at all.
func IdToken(claims jwt.MapClaims, clientID, serverURL string) []validation.Validation {
	if claims == nil {
		return []validation.Validation{
			validation.Errorf("Missing ID token which was requested by the openid scope."),
		}
	}

	var validations []validation.Validation

	fhirUser, _ := claims["fhirUser"].(string)
	if fhirUser == "" {
		validations = append(validations, validation.Errorf(`ID token is missing the "fhirUser" claim`))
	} else if resourceType, _, ok := ParseFhirUser(fhirUser); !ok {
		validations = append(validations, validation.Errorf(
			"The fhirUser claim must follow the format (optional){fhirAPI}/{resourceType}/{resourceId} "+
				"where resourceType is one of %s, but was %q", strings.Join(FhirUserResourceTypes, " | "), fhirUser))
	} else if resourceType != "Practitioner" {
		validations = append(validations, validation.Warningf(
			"Resource type must be of type Practitioner, not %s. The resource type can be %s, "+
				"but for a NAV application it must always be Practitioner.",
			resourceType, strings.Join(FhirUserResourceTypes, " | ")))
	}

	if issuer, err := claims.GetIssuer(); err != nil || issuer == "" {
		validations = append(validations, validation.Errorf(`ID token is missing the "iss" claim`))
	} else if serverURL != "" && strings.TrimSuffix(issuer, "/") != strings.TrimSuffix(serverURL, "/") {
		validations = append(validations, validation.Warningf(
			"ID token issuer should be the same as the FHIR server URL (%s), but was %s", serverURL, issuer))
	}

	audience, err := claims.GetAudience()
	if err != nil || len(audience) == 0 {
		validations = append(validations, validation.Errorf(`ID token is missing the "aud" claim`))
	} else if !slices.Contains(audience, clientID) {
		validations = append(validations, validation.Errorf(
			"ID token audience incorrect, it should be %s, but was %s", clientID, strings.Join(audience, ", ")))
	}

	return validations
}
