package stream

import (
	"errors"
	"io"
	"iter"
	"strings"
)

// ErrConsumed is yielded when a delta sequence is ranged over a second time.
var ErrConsumed = errors.New("stream: delta sequence already consumed")

const readSize = 4096

// Deltas returns a lazy, finite, non-restartable sequence of text deltas read
// from r.  Reading stops at [DONE], at EOF, or when the consumer stops
// ranging; a read error is yielded once as the final element.
func Deltas(r io.Reader) iter.Seq2[string, error] {
	used := false
	return func(yield func(string, error) bool) {
		if used {
			yield("", ErrConsumed)
			return
		}
		used = true

		var re Reassembler
		buf := make([]byte, readSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				for _, d := range re.Feed(buf[:n]) {
					if !yield(d, nil) {
						return
					}
				}
				if re.Done() {
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					for _, d := range re.Finish() {
						if !yield(d, nil) {
							return
						}
					}
					return
				}
				yield("", err)
				return
			}
		}
	}
}

// Collect drains r and returns the concatenation of every delta.  An empty
// stream yields "" and no error.
func Collect(r io.Reader) (string, error) {
	var sb strings.Builder
	for d, err := range Deltas(r) {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(d)
	}
	return sb.String(), nil
}
