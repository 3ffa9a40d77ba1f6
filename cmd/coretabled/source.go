package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/sneller-labs/coretable/coreframe"
)

// ndjsonSource reads newline-delimited JSON objects from r and groups
// them into fixed-size row batches for IngestCmd. A .zst-suffixed
// input is transparently decompressed, with decoder concurrency
// pinned to GOMAXPROCS rather than the library's lower default.
type ndjsonSource struct {
	scanner   *bufio.Scanner
	closer    io.Closer
	batchSize int
	done      bool
}

// openNDJSONSource opens path, which may be plain NDJSON or zstd-
// compressed NDJSON (by .zst extension), and returns a RowSource that
// yields up to batchSize rows per Next call.
func openNDJSONSource(path string, batchSize int) (coreframe.RowSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coretabled: opening source: %w", err)
	}

	var r io.Reader = f
	var closer io.Closer = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("coretabled: opening zstd reader: %w", err)
		}
		rc := dec.IOReadCloser()
		r = rc
		closer = rc
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &ndjsonSource{scanner: scanner, closer: closer, batchSize: batchSize}, nil
}

func (s *ndjsonSource) Next() ([]coreframe.Row, bool, error) {
	if s.done {
		return nil, false, nil
	}

	var rows []coreframe.Row
	for len(rows) < s.batchSize && s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row coreframe.Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, false, fmt.Errorf("coretabled: decoding row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("coretabled: scanning source: %w", err)
	}
	if len(rows) == 0 {
		s.done = true
		s.closer.Close()
		return nil, false, nil
	}
	return rows, true, nil
}
