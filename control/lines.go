package control

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// ServeLines feeds newline-delimited commands from r to h until r ends or
// ctx is done. Each ack is written to w as a line when w is non-nil.
func ServeLines(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return ctx.Err()
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			resp := h.Handle(line)
			if w != nil {
				if _, err := io.WriteString(w, resp+"\n"); err != nil {
					return err
				}
			}
		}
	}
}
