package stream

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func frameLine(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"delta": map[string]any{"content": content}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return "data: " + string(b) + "\n"
}

// chunkReader returns each chunk from one Read call.
type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func TestCollectConcatenatesDeltas(t *testing.T) {
	deltas := []string{"Hello", ", ", "founder", "! ", "Ship it.", "ü€"}
	var sb strings.Builder
	sb.WriteString(": keepalive\n\n")
	for _, d := range deltas {
		sb.WriteString(frameLine(t, d))
		sb.WriteString("\n")
	}
	sb.WriteString("data: [DONE]\n")
	sb.WriteString(frameLine(t, "after done"))

	got, err := Collect(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if want := strings.Join(deltas, ""); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCollectOneByteAtATime(t *testing.T) {
	body := frameLine(t, "split ") + frameLine(t, "everywhere") + "data: [DONE]\n"
	got, err := Collect(iotest.OneByteReader(strings.NewReader(body)))
	if err != nil {
		t.Fatal(err)
	}
	if got != "split everywhere" {
		t.Fatalf("got %q", got)
	}
}

func TestCollectCRLFAndOtherFields(t *testing.T) {
	body := "event: message\r\n" + strings.TrimSuffix(frameLine(t, "a"), "\n") + "\r\n" +
		"id: 7\r\n" + strings.TrimSuffix(frameLine(t, "b"), "\n") + "\r\n" + "data: [DONE]\r\n"
	got, err := Collect(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestEmptyStreamIsNoContent(t *testing.T) {
	got, err := Collect(strings.NewReader(""))
	if err != nil || got != "" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestRawNewlineInsideStringIsRecovered(t *testing.T) {
	first := frameLine(t, "Hel")
	chunkA := first + `data: {"choices":[{"delta":{"content":"lo` + "\n"
	chunkB := `world"}}]}` + "\n" + frameLine(t, "!") + "data: [DONE]\n"

	got, err := Collect(&chunkReader{chunks: []string{chunkA, chunkB}})
	if err != nil {
		t.Fatal(err)
	}
	if want := "Hello\nworld!"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFeedStopsOnParseFailureUntilNextChunk(t *testing.T) {
	var r Reassembler
	out := r.Feed([]byte(`data: {"choices":[{"delta":{"content":"x` + "\n"))
	if len(out) != 0 {
		t.Fatalf("a broken line must wait for the next chunk, got %q", out)
	}
	out = r.Feed([]byte(`y"}}]}` + "\n" + frameLine(t, "z")))
	if strings.Join(out, "|") != "x\ny|z" {
		t.Fatalf("deltas = %q", out)
	}
}

// A continuation must follow the broken line directly; a new record in
// between drops the broken payload and keeps the new record.
func TestBrokenLineFollowedByNewRecord(t *testing.T) {
	var r Reassembler
	_ = r.Feed([]byte(`data: {"choices":[{"delta":{"content":"x` + "\n" + frameLine(t, "next")))
	out := r.Feed([]byte(frameLine(t, "last")))
	if strings.Join(out, "|") != "next|last" {
		t.Fatalf("deltas = %q", out)
	}
}

func TestFinishProcessesUnterminatedLine(t *testing.T) {
	body := frameLine(t, "one ") + strings.TrimSuffix(frameLine(t, "two"), "\n")
	got, err := Collect(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if got != "one two" {
		t.Fatalf("got %q", got)
	}
}

func TestCorruptLineIsDroppedAtNextRecord(t *testing.T) {
	body := "data: {not json\n" + frameLine(t, "kept") + "data: [DONE]\n"
	got, err := Collect(&chunkReader{chunks: []string{body[:20], body[20:]}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "kept" {
		t.Fatalf("got %q", got)
	}
}

func TestDoneStopsReading(t *testing.T) {
	var r Reassembler
	out := r.Feed([]byte(frameLine(t, "a") + "data: [DONE]\n" + frameLine(t, "b")))
	if len(out) != 1 || out[0] != "a" || !r.Done() {
		t.Fatalf("out=%q done=%v", out, r.Done())
	}
	if more := r.Feed([]byte(frameLine(t, "c"))); more != nil {
		t.Fatalf("fed after done: %q", more)
	}
}

func TestDeltasIsNotRestartable(t *testing.T) {
	seq := Deltas(strings.NewReader(frameLine(t, "once")))
	var first []string
	for d, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		first = append(first, d)
	}
	if len(first) != 1 || first[0] != "once" {
		t.Fatalf("first pass = %q", first)
	}
	for _, err := range seq {
		if !errors.Is(err, ErrConsumed) {
			t.Fatalf("second pass err = %v", err)
		}
	}
}

func TestDeltasYieldsReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(frameLine(t, "partial")), iotest.ErrReader(boom))
	got, err := Collect(r)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got != "partial" {
		t.Fatalf("got %q", got)
	}
}

func TestTurnApplyDelta(t *testing.T) {
	turn := NewTurn([]Message{{Role: "user", Content: "hi"}})
	for _, d := range []string{"Hel", "", "lo"} {
		if err := turn.ApplyDelta(d); err != nil {
			t.Fatal(err)
		}
	}
	if len(turn.Messages) != 2 {
		t.Fatalf("messages = %+v", turn.Messages)
	}
	if last := turn.Messages[1]; last.Role != "assistant" || last.Content != "Hello" {
		t.Fatalf("last = %+v", last)
	}
	if got := turn.Freeze(); got != "Hello" {
		t.Fatalf("Freeze = %q", got)
	}
	if err := turn.ApplyDelta("more"); !errors.Is(err, ErrFrozen) {
		t.Fatalf("err = %v", err)
	}
	if got := turn.Messages[1].Content; got != "Hello" {
		t.Fatalf("text changed after freeze: %q", got)
	}
}

func TestTurnDoesNotAliasHistory(t *testing.T) {
	history := []Message{{Role: "assistant", Content: "earlier"}}
	turn := NewTurn(history)
	_ = turn.ApplyDelta("new")
	if history[0].Content != "earlier" {
		t.Fatalf("history mutated: %+v", history)
	}
}
