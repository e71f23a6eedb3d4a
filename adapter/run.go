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

package adapter

import (
	"context"
	"io"

	"github.com/sofcheck/sofcheck/report"
	"github.com/sofcheck/sofcheck/validation"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type result struct {
	index       int
	validations []validation.Validation
}

// Run runs checks with at most concurrency checks at the same time and returns
// one section per check in the order of checks. Findings of each section are
// sorted by severity. A progress bar is written to progress if it isn't nil.
func Run(ctx context.Context, s Session, checks []Check, concurrency int, progress io.Writer) []report.Section {
	if len(checks) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var p *mpb.Progress
	var bar *mpb.Bar
	if progress != nil {
		p = mpb.NewWithContext(ctx, mpb.WithOutput(progress), mpb.WithWidth(64))
		bar = p.AddBar(int64(len(checks)),
			mpb.PrependDecorators(
				decor.Name("checks", decor.WC{W: 7}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage(decor.WC{W: 5})),
			mpb.BarRemoveOnComplete(),
		)
	}

	sections := make([]report.Section, len(checks))
	finished := make(chan bool)
	resultCh := make(chan result)
	go func() {
		for result := range resultCh {
			check := checks[result.index]
			sections[result.index] = report.Section{
				Title:       check.Title,
				Description: check.Description,
				Validations: validation.Present(result.validations),
			}
			if bar != nil {
				bar.Increment()
			}
		}
		finished <- true
	}()

	sem := make(chan bool, concurrency)
	for i, check := range checks {
		sem <- true
		go func(i int, check Check) {
			defer func() { <-sem }()
			resultCh <- result{index: i, validations: check.Run(ctx, s)}
		}(i, check)
	}

	// Wait for all checks to finish
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
	close(resultCh)
	<-finished

	if p != nil {
		p.Wait()
	}
	return sections
}
