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
	"fmt"
	"os"
	"strings"

	"github.com/sofcheck/sofcheck/check"
	"github.com/sofcheck/sofcheck/report"
	"github.com/sofcheck/sofcheck/util"
	"github.com/sofcheck/sofcheck/validation"
	"github.com/spf13/cobra"
)

// checkNDJSONFile checks every resource of the NDJSON file. Each non-empty
// line becomes a section.
func checkNDJSONFile(filename string) ([]report.Section, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	chunks, err := util.CalculateFileChunks(file, '\n')
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", filename, err)
	}

	var sections []report.Section
	for _, chunk := range chunks {
		line, err := util.ReadChunk(file, chunk)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		resourceType, validations, err := check.Raw(line)
		title := fmt.Sprintf("Line %d", chunk.ChunkNumber)
		if resourceType != "" {
			title = fmt.Sprintf("Line %d: %s", chunk.ChunkNumber, resourceType)
		}
		if err != nil {
			validations = []validation.Validation{validation.FromError("Unable to check resource", err)}
		}
		logger.Debug().Int("line", chunk.ChunkNumber).Str("resourceType", resourceType).
			Int("findings", len(validations)).Msg("checked")

		sections = append(sections, report.Section{
			Title:       title,
			Validations: validation.Present(validations),
		})
	}
	return sections, nil
}

var checkFileCmd = &cobra.Command{
	Use:   "check-file [ndjson-file]",
	Short: "Checks the resources of an NDJSON file",
	Long: `Checks every resource of an NDJSON file offline, i.e. without a FHIR server.

Supported resource types are ` + strings.Join(check.ResourceTypes, ", ") + `.
Every line becomes a section of the report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := failOnSeverity(); err != nil {
			return err
		}
		sections, err := checkNDJSONFile(args[0])
		if err != nil {
			return err
		}

		r := newReport(sections, nil)
		r.Server = ""
		return finishReport(cmd, r)
	},
}

func init() {
	rootCmd.AddCommand(checkFileCmd)

	addOutputFlags(checkFileCmd)
}
