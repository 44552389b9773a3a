package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// LinePrompter reads typed commands line by line. The reader is drained
// on a background goroutine so a pending prompt can be abandoned when the
// context ends.
type LinePrompter struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out, lines: make(chan string)}
}

func (p *LinePrompter) Prompt(ctx context.Context, label string) (string, error) {
	p.once.Do(func() { go p.scan() })

	fmt.Fprint(p.out, label)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return normalize(line), nil
	}
}

func (p *LinePrompter) scan() {
	defer close(p.lines)

	sc := bufio.NewScanner(p.in)
	for sc.Scan() {
		p.lines <- sc.Text()
	}
}
