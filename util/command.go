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
	"fmt"
	"strings"
	"time"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// RunStats collects statistics about the requests issued against a FHIR server
// during one run.
type RunStats struct {
	Requests                int                    `json:"requests" yaml:"requests"`
	FailedRequests          int                    `json:"failedRequests" yaml:"failedRequests"`
	RequestDurations        []float64              `json:"-" yaml:"-"`
	TotalBytesIn            int64                  `json:"totalBytesIn" yaml:"totalBytesIn"`
	TotalDuration           time.Duration          `json:"totalDuration" yaml:"totalDuration"`
	InlineOperationOutcomes []*fm.OperationOutcome `json:"-" yaml:"-"`
}

func (rs *RunStats) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Requests	[total, failed]		%d, %d\n", rs.Requests, rs.FailedRequests))
	builder.WriteString(fmt.Sprintf("Duration	[total]			%s\n", FmtDurationHumanReadable(rs.TotalDuration)))

	if len(rs.RequestDurations) > 0 {
		durations := make([]float64, len(rs.RequestDurations))
		copy(durations, rs.RequestDurations)
		p := CalculateDurationStatistics(durations)
		builder.WriteString(fmt.Sprintf("Requ. Latencies	[mean, 50, 95, 99, max]	%s, %s, %s, %s, %s\n", p.Mean, p.Q50, p.Q95, p.Q99, p.Max))
	}

	if rs.Requests > 0 {
		builder.WriteString(fmt.Sprintf("Bytes In	[total, mean]		%s, %s\n", FmtBytesHumanReadable(float32(rs.TotalBytesIn)), FmtBytesHumanReadable(float32(rs.TotalBytesIn)/float32(rs.Requests))))
	}

	if len(rs.InlineOperationOutcomes) > 0 {
		builder.WriteString("\nServer Warnings & Information:\n")
		builder.WriteString(Indent(2, FmtOperationOutcomes(rs.InlineOperationOutcomes)))
	}

	return builder.String()
}
