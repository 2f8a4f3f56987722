// Package console is the line-oriented chat used when no terminal is attached.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/pkg/errors"
)

// continuation at the end of a line keeps the draft open, like shift+enter.
const continuation = `\`

// Printer writes messages as "LABEL: content" blocks. It is safe for concurrent use
// since replies arrive from timer goroutines.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Print(m conversation.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "%s: %s\n\n", m.Sender.Label(), m.Content)
}

// PrintEvent prints a message of another session, prefixed with its session id.
func (p *Printer) PrintEvent(sessionID string, m conversation.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "[%s] %s: %s\n\n", sessionID, m.Sender.Label(), m.Content)
}

// Observer adapts the printer to a store observer.
func (p *Printer) Observer() conversation.Observer {
	return p.Print
}

// Run prints the current conversation, then submits every line read from in.
// At EOF it waits up to drain for outstanding replies before returning.
// The session must have been created with the printer's observer.
func Run(ctx context.Context, s *chat.Session, p *Printer, in io.Reader, drain time.Duration) error {
	for _, m := range s.Messages() {
		p.Print(m)
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var draft []string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return errors.Wrap(err, "reading input")
					}
				default:
				}
				// input ended inside a continued message
				if len(draft) > 0 {
					send(s, draft)
				}
				return waitForReplies(ctx, s, drain)
			}
			if strings.HasSuffix(line, continuation) {
				draft = append(draft, strings.TrimSuffix(line, continuation))
				continue
			}
			send(s, append(draft, line))
			draft = draft[:0]
		}
	}
}

func send(s *chat.Session, lines []string) {
	s.SetDraft(strings.Join(lines, "\n"))
	s.HandleKey(chat.KeyEvent{Key: chat.KeyEnter})
}

func waitForReplies(ctx context.Context, s *chat.Session, drain time.Duration) error {
	if s.Pending() == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, drain)
	defer cancel()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for s.Pending() > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
	return nil
}
