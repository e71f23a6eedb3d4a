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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sofcheck/sofcheck/config"
	"github.com/sofcheck/sofcheck/fhir"
	"github.com/sofcheck/sofcheck/smart"
	"github.com/spf13/cobra"
)

var configFile string

var cfg *config.Config
var logger = zerolog.Nop()

func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func createClient() (*fhir.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fhirServerBaseUrl, err := cfg.ServerURL()
	if err != nil {
		return nil, err
	}

	if cfg.Insecure {
		return fhir.NewClientInsecure(*fhirServerBaseUrl, clientAuth()), nil
	} else if cfg.CertificateAuthority != "" {
		return fhir.NewClientCa(*fhirServerBaseUrl, clientAuth(), cfg.CertificateAuthority)
	}
	return fhir.NewClient(*fhirServerBaseUrl, clientAuth()), nil
}

func clientAuth() fhir.Auth {
	if cfg.User != "" {
		return fhir.BasicAuth{User: cfg.User, Password: cfg.Password}
	} else if cfg.Token != "" {
		return fhir.TokenAuth{Token: cfg.Token}
	}
	return nil
}

func createSession() (*smart.Session, error) {
	client, err := createClient()
	if err != nil {
		return nil, err
	}
	session, err := smart.NewSession(client, cfg.Launch(), logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("server", cfg.Server).
		Str("fhirUser", session.User().FhirUser).
		Str("patient", session.Patient()).
		Str("encounter", session.Encounter()).
		Msg("session created")
	return session, nil
}

// runContext returns the context of a run which is bounded by the configured
// timeout and carries the logger.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	return logger.WithContext(ctx), cancel
}

func progressOutput(cmd *cobra.Command) io.Writer {
	if cfg.NoProgress {
		return nil
	}
	return cmd.ErrOrStderr()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sofcheck",
	Short: "Check the SMART on FHIR® integration of an EHR from the Command Line",
	Long: `sofcheck checks that the FHIR® server of an EHR and a completed SMART on
FHIR launch against it satisfy the HL7 Norway no-basis profiles and the
requirements NAV puts on EHR systems integrating the sick leave application.

It reads the SMART configuration, the ID token and the Patient, Practitioner,
Encounter, Condition and DocumentReference of the launch context, writes
DocumentReferences and checks NDJSON files offline.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig(cmd) },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (YAML, JSON or TOML)")
	flags.String("server", "", "the base URL of the FHIR server")
	flags.BoolP("insecure", "k", false, "allow insecure server connections when using SSL")
	flags.String("certificate-authority", "", "path to a cert file for the certificate authority")
	flags.String("user", "", "user information for basic authentication")
	flags.String("password", "", "password information for basic authentication")
	flags.String("token", "", "access token of the SMART launch used as bearer token")
	flags.String("id-token", "", "ID token of the SMART launch")
	flags.String("client-id", "", "client id the SMART launch was done for")
	flags.String("patient", "", "id of the patient in launch context")
	flags.String("encounter", "", "id of the encounter in launch context")
	flags.String("condition", "", "id of the condition to check instead of searching one of the patient")
	flags.String("log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	flags.Bool("no-progress", false, "don't show progress bar")
	flags.Duration("timeout", config.DefaultTimeout, "timeout of a whole run")
}
