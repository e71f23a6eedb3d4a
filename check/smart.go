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
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/validation"
)

// Tier is the conformance level of a field of the SMART configuration.
type Tier int

const (
	Required Tier = iota
	Recommended
	Optional
)

// SmartConfigurationField describes one field of the
// .well-known/smart-configuration document.
type SmartConfigurationField struct {
	Name string
	Tier Tier
}

// SmartConfigurationFields are the fields checked by SmartConfiguration in
// check order.
//
// https://hl7.org/fhir/smart-app-launch/conformance.html#metadata
var SmartConfigurationFields = []SmartConfigurationField{
	// issuer, jwks_uri and authorization_endpoint are conditional in SMART
	// but required by NAV.
	{"issuer", Required},
	{"jwks_uri", Required},
	{"authorization_endpoint", Required},
	{"grant_types_supported", Required},
	{"token_endpoint", Required},
	{"capabilities", Required},
	{"code_challenge_methods_supported", Required},

	{"user_access_brand_bundle", Recommended},
	{"user_access_brand_identifier", Recommended},
	{"scopes_supported", Recommended},
	{"response_types_supported", Recommended},
	{"management_endpoint", Recommended},
	{"introspection_endpoint", Recommended},
	{"revocation_endpoint", Recommended},

	{"token_endpoint_auth_methods_supported", Optional},
	{"registration_endpoint", Optional},
	{"associated_endpoints", Optional},
}

// SmartConfiguration checks that the required, recommended and optional fields
// of a SMART configuration are present. The contents of the fields are not
// checked. source names the document in messages, usually its URL.
func SmartConfiguration(config fhir.SmartConfiguration, source string) []validation.Validation {
	if source == "" {
		source = ".well-known/smart-configuration"
	}

	var validations []validation.Validation
	for _, field := range SmartConfigurationFields {
		if config.Has(field.Name) {
			continue
		}
		switch field.Tier {
		case Required:
			validations = append(validations, validation.Errorf("Missing REQUIRED field %s in %s", field.Name, source))
		case Recommended:
			validations = append(validations, validation.Warningf("Missing RECOMMENDED field %s in %s", field.Name, source))
		case Optional:
			validations = append(validations, validation.Infof("%s not found in %s", field.Name, source))
		}
	}
	return validations
}
