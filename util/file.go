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

package util

import (
	"errors"
	"fmt"
	"os"
)

// ErrOutputFileExists is returned by CreateOutputFile if the file is already
// there.
var ErrOutputFileExists = errors.New("output file does already exist")

// CreateOutputFile creates the report file at path. Existing files are never
// overwritten.
//
// Note: The caller has to close the returned file.
func CreateOutputFile(path string) (*os.File, error) {
	outputFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrOutputFileExists, path)
	} else if err != nil {
		return nil, fmt.Errorf("could not create the output file %s: %w", path, err)
	}
	return outputFile, nil
}
