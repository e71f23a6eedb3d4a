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

package fhir

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

var rawMessageType = reflect.TypeOf(json.RawMessage{})

// unmarshalLenient decodes the JSON object data into the struct v points to
// element by element. Elements of an unexpected JSON type are left at their
// zero value and elements of arrays which can't be decoded are dropped, so
// that the checks report them as absent.
func unmarshalLenient(data []byte, v any) error {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return err
	}

	value := reflect.ValueOf(v).Elem()
	for i := 0; i < value.NumField(); i++ {
		name, _, _ := strings.Cut(value.Type().Field(i).Tag.Get("json"), ",")
		raw, ok := object[name]
		if name == "" || name == "-" || !ok {
			continue
		}
		setLenient(value.Field(i), raw)
	}
	return nil
}

func setLenient(field reflect.Value, raw json.RawMessage) {
	if field.Kind() == reflect.Slice && field.Type() != rawMessageType {
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil || elements == nil {
			return
		}
		slice := reflect.MakeSlice(field.Type(), 0, len(elements))
		for _, element := range elements {
			if bytes.Equal(bytes.TrimSpace(element), []byte("null")) {
				continue
			}
			target := reflect.New(field.Type().Elem())
			if json.Unmarshal(element, target.Interface()) == nil {
				slice = reflect.Append(slice, target.Elem())
			}
		}
		field.Set(slice)
		return
	}

	target := reflect.New(field.Type())
	if json.Unmarshal(raw, target.Interface()) == nil {
		field.Set(target.Elem())
	}
}
