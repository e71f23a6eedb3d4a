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

package cmd

import (
	"github.com/sofcheck/sofcheck/report"
	"github.com/spf13/cobra"
)

var renderReportCmd = &cobra.Command{
	Use:   "render-report",
	Short: "Renders a report as HTML",
	Long: `Reads a report in JSON form as written by validate --output json from
stdin and writes it as standalone HTML page to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := report.Read(cmd.InOrStdin())
		if err != nil {
			return err
		}

		return report.WriteHTML(cmd.OutOrStdout(), r)
	},
}

func init() {
	rootCmd.AddCommand(renderReportCmd)
}
