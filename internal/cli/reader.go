package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when input is canceled by context.
var ErrInputCanceled = errors.New("input canceled")

// LineReader reads lines from an input stream and gives up when the
// context is canceled. A canceled read keeps draining in the background and
// its line is lost.
type LineReader struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine reads one trimmed line. A final line without a newline is
// returned before io.EOF is reported.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInputCanceled
	}

	type result struct {
		err  error
		line string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		line, err := r.reader.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		resultCh <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res := <-resultCh:
		return res.line, res.err
	}
}
