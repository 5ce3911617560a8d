// Package session runs the interactive read, dispatch and present loop.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	"github.com/tanpawarit/careermate/agent/render"
	logx "github.com/tanpawarit/careermate/pkg/logger"
)

const (
	greeting = `Hi! I'm CareerMate, your multi-agent career assistant.
You can ask me things like:
 - What skills do I need to become a data scientist?
 - Can you find me a remote ML job?
 - Suggest courses for deep learning.`
	hint     = "Type 'exit' or 'quit' anytime to end the session."
	farewell = "Goodbye! Wishing you success in your career journey."
	prompt   = "You: "
)

// TurnHandler runs one turn to completion.
type TurnHandler interface {
	HandleTurn(ctx context.Context, text string) (contractx.StructuredResult, error)
}

type Loop struct {
	handler  TurnHandler
	in       io.Reader
	out      io.Writer
	renderer *render.Renderer
	logger   zerolog.Logger
}

func New(handler TurnHandler, in io.Reader, out io.Writer) *Loop {
	return &Loop{
		handler:  handler,
		in:       in,
		out:      out,
		renderer: render.New(out),
		logger:   logx.Component("session"),
	}
}

// Run processes turns sequentially until exit, EOF or ctx is done. A failed
// turn is reported and the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.renderer.Line(greeting + "\n"); err != nil {
		return err
	}
	if err := l.renderer.Dim(hint); err != nil {
		return err
	}
	if err := l.renderer.Line(""); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := l.readLines(done)

	for {
		if _, err := io.WriteString(l.out, prompt); err != nil {
			return err
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return err
			}
			return l.renderer.Line("\n" + farewell)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if isExit(text) {
			return l.renderer.Line(farewell)
		}
		// A context cancelled after the line was read abandons the turn before routing.
		if ctx.Err() != nil {
			return nil
		}

		if err := l.turn(ctx, text); err != nil {
			return err
		}
	}
}

func (l *Loop) turn(ctx context.Context, text string) error {
	res, err := l.handler.HandleTurn(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		l.logger.Debug().Err(err).Msg("turn failed")
		return l.renderer.Error(FailureMessage(err))
	}

	if err := l.renderer.Line("\nCareerMate's Response:"); err != nil {
		return err
	}
	if err := l.renderer.Result(res); err != nil {
		return err
	}
	return l.renderer.Line("")
}

func (l *Loop) readLines(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func isExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit":
		return true
	}
	return false
}

// FailureMessage is what the user sees for a failed turn.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrRouting):
		return "Sorry, I could not work out which specialist should handle that. Please rephrase and try again."
	case errors.Is(err, contractx.ErrValidation):
		return "Sorry, the answer did not come back in the expected format. Please try again."
	case errors.Is(err, contractx.ErrArgument):
		return "Sorry, I could not look that up with the details given. Try adding your career goal or skills."
	default:
		return "Sorry, the assistant service is unavailable right now. Please try again in a moment."
	}
}
