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
	"fmt"
	"io"
	"time"

	"github.com/sofcheck/sofcheck/report"
	"github.com/sofcheck/sofcheck/util"
	"github.com/sofcheck/sofcheck/validation"
	"github.com/spf13/cobra"
)

var outputFormat string
var outputFile string
var failOn string

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", report.FormatText, "output format (text, json, yaml or html)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "write the report into this file instead of stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "error", "exit with a non-zero code if findings of this severity or higher are found (error, warning, info or none)")
}

func addConcurrencyFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("concurrency", "c", 4, "number of checks running in parallel")
}

// failOnSeverity parses the fail-on flag. ok is false for none.
func failOnSeverity() (severity validation.Severity, ok bool, err error) {
	if failOn == "none" {
		return "", false, nil
	}
	severity, err = validation.ParseSeverity(failOn)
	if err != nil {
		return "", false, err
	}
	return severity, true, nil
}

func writeReport(cmd *cobra.Command, r report.Report) error {
	var w io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		file, err := util.CreateOutputFile(outputFile)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return report.Write(w, r, outputFormat)
}

// finishReport writes r and fails if it contains findings at or above the
// fail-on severity.
func finishReport(cmd *cobra.Command, r report.Report) error {
	if err := writeReport(cmd, r); err != nil {
		return err
	}

	severity, ok, err := failOnSeverity()
	if err != nil || !ok {
		return err
	}
	if highest := r.Highest(); highest != validation.OK && highest.Rank() >= severity.Rank() {
		counts := validation.Count(r.Validations())
		return fmt.Errorf("found %d errors, %d warnings and %d infos", counts[validation.Error],
			counts[validation.Warning], counts[validation.Info])
	}
	return nil
}

func newReport(sections []report.Section, stats *util.RunStats) report.Report {
	r := report.Report{
		GeneratedAt: time.Now(),
		Sections:    sections,
		Stats:       stats,
	}
	if cfg != nil {
		r.Server = cfg.Server
	}
	return r
}
