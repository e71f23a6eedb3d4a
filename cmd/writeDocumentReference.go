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
	"github.com/sofcheck/sofcheck/data"
	"github.com/spf13/cobra"
)

var writeMode string

func readDocument(args []string) (*data.Document, error) {
	if len(args) == 0 {
		document := data.DefaultDocument()
		return &document, nil
	}
	return data.ReadDocumentFile(args[0])
}

var writeDocumentReferenceCmd = &cobra.Command{
	Use:   "write-document-reference [document-file]",
	Short: "Writes DocumentReferences and checks them as read back",
	Long: `Creates a DocumentReference for the patient in launch context authored by
the logged-in user and checks it as read back from the server.

In binary mode the document is uploaded as Binary first and the
DocumentReference refers to it by URL. In b64 mode the document is sent as
base64 data inside the DocumentReference.

The optional document file describes the document in YAML form:

  title: My sick leave
  language: NO-nb
  description: Sykmelding
  contentType: application/pdf
  file: sykmelding.pdf

Without document file a one page PDF is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := failOnSeverity(); err != nil {
			return err
		}
		document, err := readDocument(args)
		if err != nil {
			return err
		}
		checks, err := adapter.WriteChecks(*document, writeMode)
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
		sections := adapter.Run(ctx, session, checks, cfg.Concurrency, progressOutput(cmd))
		stats := session.Stats()
		stats.TotalDuration = time.Since(start)

		r := newReport(sections, &stats)
		r.FhirRelease = 4
		return finishReport(cmd, r)
	},
}

func init() {
	rootCmd.AddCommand(writeDocumentReferenceCmd)

	addOutputFlags(writeDocumentReferenceCmd)
	addConcurrencyFlag(writeDocumentReferenceCmd)
	writeDocumentReferenceCmd.Flags().StringVar(&writeMode, "mode", "both", "how the document is sent (binary, b64 or both)")
}
