package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRangeNotSatisfiable is returned when a well-formed range lies outside
// the file's bounds. Use errors.Is to check; the concrete error carries the
// total length for the Content-Range response header.
var ErrRangeNotSatisfiable = errors.New("stream: range not satisfiable")

// RangeError reports an unsatisfiable range request against a file of
// TotalLength bytes.
type RangeError struct {
	TotalLength int64
}

func (e *RangeError) Error() string {
	if e.TotalLength == 0 {
		return "stream: range requested against empty file"
	}
	return fmt.Sprintf("stream: requested range outside 0-%d", e.TotalLength-1)
}

func (e *RangeError) Unwrap() error {
	return ErrRangeNotSatisfiable
}

// byteRange is a transient, inclusive byte window into a file. Recomputed
// per request, never stored.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

// parseRange interprets a Range header of the form "bytes=<start>-[end]"
// against a file of total bytes.
//
// Returns (nil, nil) when the header is absent or syntactically invalid; the
// caller then serves the full file, which is what browsers expect from a
// server ignoring a malformed header. A start beyond the last byte, or any
// range against an empty file, is rejected with RangeError. Only the first
// pair of a multi-range header is honored, and the suffix form "bytes=-n"
// counts as invalid: start is mandatory.
func parseRange(header string, total int64) (*byteRange, error) {
	if header == "" {
		return nil, nil
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, nil
	}

	spec := strings.TrimPrefix(header, prefix)
	if i := strings.Index(spec, ","); i >= 0 {
		spec = spec[:i]
	}

	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, nil
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}

	if start >= total {
		return nil, &RangeError{TotalLength: total}
	}

	end := total - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < start {
			return nil, nil
		}
		if e < end {
			end = e
		}
	}

	return &byteRange{start: start, end: end}, nil
}
