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

package util

import (
	"errors"
	"fmt"
	"io"
)

// Size of the buffer used for calculating file chunks.
const chunksCalculationBufferSizeBytes = 4096

// FileChunk describes a chunk within a file with its starting position and end
// position in bytes. Both are given as bytes counted from the file's beginning.
// The end position is exclusive and doesn't include the delimiter. ChunkNumber
// is the 1-based position of the chunk within the file, i.e. the line number
// of an NDJSON file.
type FileChunk struct {
	ChunkNumber int
	StartBytes  int64
	EndBytes    int64
}

// Len returns the length of the chunk in bytes.
func (c FileChunk) Len() int64 {
	return c.EndBytes - c.StartBytes
}

// CalculateFileChunks calculates all chunks of r that are delimited by
// delimiter. r is read in a streamed fashion. A trailing delimiter doesn't
// start a new chunk.
func CalculateFileChunks(r io.Reader, delimiter byte) ([]FileChunk, error) {
	var chunks []FileChunk
	var chunkStart, offset int64
	buf := make([]byte, chunksCalculationBufferSizeBytes)
	for {
		n, err := r.Read(buf)
		for idx, b := range buf[:n] {
			if b == delimiter {
				chunks = append(chunks, FileChunk{
					ChunkNumber: len(chunks) + 1,
					StartBytes:  chunkStart,
					EndBytes:    offset + int64(idx),
				})
				chunkStart = offset + int64(idx) + 1
			}
		}
		offset += int64(n)

		if errors.Is(err, io.EOF) {
			if offset > chunkStart {
				chunks = append(chunks, FileChunk{
					ChunkNumber: len(chunks) + 1,
					StartBytes:  chunkStart,
					EndBytes:    offset,
				})
			}
			return chunks, nil
		}
		if err != nil {
			return chunks, fmt.Errorf("error while reading chunk %d: %w", len(chunks)+1, err)
		}
	}
}

// ReadChunk reads the bytes of chunk from r.
func ReadChunk(r io.ReaderAt, chunk FileChunk) ([]byte, error) {
	data := make([]byte, chunk.Len())
	if _, err := r.ReadAt(data, chunk.StartBytes); err != nil && !(errors.Is(err, io.EOF) && chunk.Len() == 0) {
		return nil, fmt.Errorf("error while reading chunk %d: %w", chunk.ChunkNumber, err)
	}
	return data, nil
}
