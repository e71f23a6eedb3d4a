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

// Package data contains the description of the document written by the
// write-then-read flows.
package data

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

//go:embed sample.pdf
var samplePdf []byte

// Document describes a document to upload. File is the path of the content,
// relative paths are resolved against the directory of the document file.
type Document struct {
	Title       string `yaml:"title"`
	Language    string `yaml:"language"`
	Description string `yaml:"description"`
	ContentType string `yaml:"contentType"`
	File        string `yaml:"file"`
	Content     []byte `yaml:"-"`
}

// DefaultDocument returns a one page PDF sick leave document.
func DefaultDocument() Document {
	return Document{
		Title:       "My cool sykmelding document",
		Language:    "NO-nb",
		Description: "Sykmelding",
		ContentType: "application/pdf",
		Content:     samplePdf,
	}
}

// ReadDocumentFile reads a document description in YAML form together with
// its content. Absent fields are taken from DefaultDocument.
func ReadDocumentFile(filename string) (*Document, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	document := DefaultDocument()
	if err := yaml.Unmarshal(file, &document); err != nil {
		return nil, fmt.Errorf("could not parse the document file %s: %w", filename, err)
	}

	if document.File != "" {
		contentFile := document.File
		if !filepath.IsAbs(contentFile) {
			contentFile = filepath.Join(filepath.Dir(filename), contentFile)
		}
		content, err := os.ReadFile(contentFile)
		if err != nil {
			return nil, fmt.Errorf("could not read the content of the document file %s: %w", filename, err)
		}
		document.Content = content
	}
	return &document, nil
}
