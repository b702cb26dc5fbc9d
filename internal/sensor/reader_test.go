package sensor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/salat/internal/heading"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestReaderSource_Run(t *testing.T) {
	input := strings.Join([]string{
		`{"heading": 10, "ts": 100}`,
		``,
		`garbage`,
		`{"heading": 20, "declination": 3, "ts": 150}`,
		`{"heading": 400, "ts": 200}`,
		`{"heading": 30, "ts": 250}`,
	}, "\n")

	var logs bytes.Buffer
	src := NewReaderSource(strings.NewReader(input), testLogger(&logs))

	var got []heading.Sample
	if err := src.Run(context.Background(), func(s heading.Sample) { got = append(got, s) }); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d samples, want 3: %+v", len(got), got)
	}
	for i, want := range []float64{10, 20, 30} {
		if got[i].Heading != want {
			t.Errorf("sample %d heading = %v, want %v", i, got[i].Heading, want)
		}
	}
	if got[1].Declination != 3 || got[1].TimestampMs != 150 {
		t.Errorf("sample 1 = %+v", got[1])
	}

	if n := strings.Count(logs.String(), "skipping malformed sample"); n != 2 {
		t.Errorf("logged %d malformed samples, want 2:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "line=3") {
		t.Errorf("log should name the offending line:\n%s", logs.String())
	}
}

func TestReaderSource_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var logs bytes.Buffer
	src := NewReaderSource(pr, testLogger(&logs))

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan heading.Sample, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(s heading.Sample) { received <- s })
	}()

	if _, err := io.WriteString(pw, `{"heading": 90, "ts": 1}`+"\n"); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-received:
		if s.Heading != 90 {
			t.Errorf("heading = %v, want 90", s.Heading)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sample not delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
