// Package stream turns the gateway's server-sent-event byte stream back into
// assistant text.
//
// Frames look like `data: {"choices":[{"delta":{"content":"..."}}]}` and the
// stream ends with `data: [DONE]`.  Network chunks do not respect line
// boundaries, so bytes are buffered until a newline arrives.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

const dataPrefix = "data: "

// DoneSentinel marks the end of a completion stream.
const DoneSentinel = "[DONE]"

type frame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Reassembler rebuilds complete SSE lines across chunk boundaries and
// extracts text deltas from them.  It is not safe for concurrent use; one
// stream owns one Reassembler.
type Reassembler struct {
	buf     []byte
	done    bool
	stuck   bool    // the first buffered line failed to parse on a previous chunk
	pending *string // payload waiting for its continuation line
}

// Done reports whether the [DONE] sentinel has been seen.
func (r *Reassembler) Done() bool { return r.done }

// Feed appends chunk to the pending buffer and returns the deltas found in
// every complete line, in arrival order.
//
// When a data line does not parse as JSON the line is pushed back onto the
// buffer and processing stops until the next chunk arrives.  On that next
// chunk the line is retried joined with its continuation, which recovers
// records that carried a raw newline inside a string value.
func (r *Reassembler) Feed(chunk []byte) []string {
	if r.done {
		return nil
	}
	r.buf = append(r.buf, chunk...)
	return r.drain()
}

// Finish processes a trailing line that was not newline-terminated when the
// upstream body ended.
func (r *Reassembler) Finish() []string {
	if r.done || len(bytes.TrimSpace(r.buf)) == 0 {
		r.buf = nil
		return nil
	}
	r.buf = append(r.buf, '\n')
	r.stuck = true
	out := r.drain()
	r.buf = nil
	return out
}

func (r *Reassembler) drain() []string {
	var out []string
	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx < 0 {
			return out
		}
		line := strings.TrimSuffix(string(r.buf[:idx]), "\r")
		rest := r.buf[idx+1:]

		if r.pending != nil {
			if isRecordBoundary(line) {
				// a new record started: the buffered payload was corrupt
				r.pending = nil
				continue
			}
			merged := *r.pending + "\n" + line
			r.buf = rest
			if delta, ok := parseFrame(merged); ok {
				r.pending = nil
				if delta != "" {
					out = append(out, delta)
				}
			} else {
				r.pending = &merged
			}
			continue
		}

		// blank lines, ":" keepalives and non-data fields are skipped
		if !strings.HasPrefix(line, dataPrefix) {
			r.buf = rest
			continue
		}
		payload := strings.TrimSpace(line[len(dataPrefix):])
		if payload == DoneSentinel {
			r.done = true
			r.buf = nil
			return out
		}
		if delta, ok := parseFrame(payload); ok {
			r.buf = rest
			r.stuck = false
			if delta != "" {
				out = append(out, delta)
			}
			continue
		}
		if !r.stuck {
			// leave the line in the buffer and wait for more bytes
			r.stuck = true
			return out
		}
		r.stuck = false
		r.pending = &payload
		r.buf = rest
	}
}

// isRecordBoundary reports whether line begins a new record (or is a
// keepalive) rather than continuing a broken one.
func isRecordBoundary(line string) bool {
	return strings.HasPrefix(line, dataPrefix) || strings.HasPrefix(line, ":") || strings.TrimSpace(line) == ""
}

// parseFrame decodes one payload.  A payload containing raw newlines is also
// tried with the newlines escaped, since they can only have come from inside
// a string value.
func parseFrame(payload string) (string, bool) {
	var f frame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		if !strings.Contains(payload, "\n") {
			return "", false
		}
		if err := json.Unmarshal([]byte(strings.ReplaceAll(payload, "\n", `\n`)), &f); err != nil {
			return "", false
		}
	}
	if len(f.Choices) == 0 {
		return "", true
	}
	return f.Choices[0].Delta.Content, true
}
