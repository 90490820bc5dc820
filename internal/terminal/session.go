package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"fxconvert/internal/converter"
)

const helpText = "Commands: <amount> | (empty line) | from <CODE> | to <CODE> | swap | codes | retry | help | quit"

// Session drives one converter from line-oriented input.
type Session struct {
	conv     *converter.Converter
	renderer *Renderer
	in       io.Reader
	prompt   io.Writer // nil when input isn't interactive
}

// NewSession reads commands from in. When prompt is non-nil a prompt is printed to it
// before every line is read.
func NewSession(conv *converter.Converter, renderer *Renderer, in io.Reader, prompt io.Writer) *Session {
	return &Session{conv: conv, renderer: renderer, in: in, prompt: prompt}
}

// Run mounts the converter, waits for the rates and then processes commands until quit,
// end of input or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	defer s.conv.Dispose()

	s.renderer.Render(s.conv.View())
	if err := wait(ctx, s.conv.Mount(ctx)); err != nil {
		return err
	}
	s.renderer.Render(s.conv.View())
	s.renderer.Notice(helpText)

	// The reader stops handing out lines once Run returns.
	stopped := make(chan struct{})
	defer close(stopped)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stopped:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		s.showPrompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			quit, err := s.handle(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *Session) showPrompt() {
	if s.prompt != nil {
		fmt.Fprint(s.prompt, "> ")
	}
}

// handle applies one command and reports whether the session should end.
func (s *Session) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.conv.SetAmountText("")
		s.renderer.Render(s.conv.View())
		return false, nil
	}

	cmd := strings.ToLower(fields[0])
	switch {
	case cmd == "quit" || cmd == "exit":
		return true, nil
	case cmd == "help":
		s.renderer.Notice(helpText)
		return false, nil
	case cmd == "codes":
		s.renderer.Codes(s.conv.View().Codes, 12)
		return false, nil
	case cmd == "swap":
		s.report(s.conv.Switch())
	case cmd == "retry":
		done, err := s.conv.Retry(ctx)
		if err != nil {
			s.report(err)
			return false, nil
		}
		s.renderer.Render(s.conv.View())
		if err = wait(ctx, done); err != nil {
			return false, err
		}
	case (cmd == "from" || cmd == "to") && len(fields) == 2:
		code := strings.ToUpper(fields[1])
		if cmd == "from" {
			s.report(s.conv.SetSource(code))
		} else {
			s.report(s.conv.SetTarget(code))
		}
	default:
		if !s.conv.SetAmountText(strings.TrimSpace(line)) {
			s.renderer.Notice(helpText)
			return false, nil
		}
	}

	s.renderer.Render(s.conv.View())
	return false, nil
}

func (s *Session) report(err error) {
	if err != nil {
		s.renderer.Error(err)
	}
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
