package sensor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/smokyabdulrahman/salat/internal/heading"
)

// ReaderSource reads one JSON sample per line. Blank lines are skipped and
// malformed lines are logged and skipped.
type ReaderSource struct {
	r      io.Reader
	logger *slog.Logger
}

// NewReaderSource returns a source reading from r.
func NewReaderSource(r io.Reader, logger *slog.Logger) *ReaderSource {
	return &ReaderSource{r: r, logger: logger}
}

// Run implements Source. A read blocked on r is not interrupted by ctx; the
// reading goroutine exits when r returns.
func (s *ReaderSource) Run(ctx context.Context, handle func(heading.Sample)) error {
	type line struct {
		n    int
		data []byte
	}
	lines := make(chan line)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.r)
		n := 0
		for sc.Scan() {
			n++
			data := bytes.TrimSpace(sc.Bytes())
			if len(data) == 0 {
				continue
			}
			select {
			case lines <- line{n: n, data: bytes.Clone(data)}:
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read samples: %w", err)
					}
				default:
				}
				return nil
			}
			sample, err := Decode(l.data)
			if err != nil {
				s.logger.Warn("skipping malformed sample", "line", l.n, "error", err)
				continue
			}
			handle(sample)
		}
	}
}
