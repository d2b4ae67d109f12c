package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks the user a question and returns the answer line. It
// returns io.EOF once input is exhausted and the context error when ctx is
// cancelled while waiting.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
	Close() error
}

// LinePrompter reads answers line by line from an input stream. A pending
// read never blocks cancellation: Prompt returns as soon as ctx is done.
type LinePrompter struct {
	out   io.Writer
	lines chan string
	stop  chan struct{}
	once  sync.Once
}

// NewLinePrompter starts reading lines from in; questions go to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	p := &LinePrompter{
		out:   out,
		lines: make(chan string),
		stop:  make(chan struct{}),
	}
	go p.read(in)
	return p
}

func (p *LinePrompter) read(in io.Reader) {
	defer close(p.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case p.lines <- strings.TrimRight(sc.Text(), "\r"):
		case <-p.stop:
			return
		}
	}
}

// Prompt writes question and waits for the next line.
func (p *LinePrompter) Prompt(ctx context.Context, question string) (string, error) {
	if question != "" {
		fmt.Fprint(p.out, question)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.stop:
		return "", io.EOF
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// Close stops delivering input. The reader goroutine exits on its next line
// or at EOF.
func (p *LinePrompter) Close() error {
	p.once.Do(func() { close(p.stop) })
	return nil
}

// ScriptedPrompter replays a fixed list of answers.
type ScriptedPrompter struct {
	answers   []string
	questions []string
	mu        sync.Mutex
	closed    bool
}

// NewScriptedPrompter creates a prompter answering with answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

// Prompt returns the next scripted answer.
func (p *ScriptedPrompter) Prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.questions = append(p.questions, question)
	if p.closed || len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

// Questions returns every question asked so far.
func (p *ScriptedPrompter) Questions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.questions...)
}

// Closed reports whether Close was called.
func (p *ScriptedPrompter) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close implements Prompter.
func (p *ScriptedPrompter) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
