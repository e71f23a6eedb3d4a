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
	"time"

	"github.com/sofcheck/sofcheck/adapter"
	"github.com/sofcheck/sofcheck/util"
	"github.com/spf13/cobra"
)

var documentReferenceQuery string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks the resources of a SMART launch",
	Long: `Checks the SMART configuration, the ID token and the Patient, Practitioner,
Encounter, Condition and DocumentReference of the launch context.

The FHIR server has to be release R4. Every check becomes a section of the
report. Failures to fetch a resource are reported as errors of its section.

The DocumentReference is searched by patient and the sick leave document type
unless --document-reference-query gives other search parameters, either
directly or as @file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := failOnSeverity(); err != nil {
			return err
		}
		query, err := util.ParseQuery(documentReferenceQuery)
		if err != nil {
			return err
		}

		session, err := createSession()
		if err != nil {
			return err
		}
		defer session.CloseIdleConnections()

		ctx, cancel := runContext(cmd)
		defer cancel()

		if err := adapter.RequireR4(ctx, session); err != nil {
			return err
		}

		start := time.Now()
		sections := adapter.Run(ctx, session, adapter.ReadChecks(query), cfg.Concurrency, progressOutput(cmd))
		stats := session.Stats()
		stats.TotalDuration = time.Since(start)

		r := newReport(sections, &stats)
		r.FhirRelease = 4
		return finishReport(cmd, r)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addOutputFlags(validateCmd)
	addConcurrencyFlag(validateCmd)
	validateCmd.Flags().StringVar(&documentReferenceQuery, "document-reference-query", "",
		"search parameters of the DocumentReference search, either as query string or as @file")
}
