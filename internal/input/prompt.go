package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// FutureYearWarning is shown when a future end year is replaced by today.
const FutureYearWarning = "Future date given, assuming today."

// ErrNoInput means the input stream ended before a valid answer was given.
var ErrNoInput = errors.New("input closed before a valid year was entered")

// Prompter asks for the year range on a line-oriented terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	Now func() time.Time
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prompt keeps asking until both years are valid. Invalid answers are
// reported and asked again; only EOF or ctx cancellation end the loop early.
func (p *Prompter) Prompt(ctx context.Context, t domain.PropertyType) (domain.Query, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	current := now().Year()
	lines := bufio.NewScanner(p.In)

	var start int
	for {
		in, err := p.ask(ctx, lines, "Starting year: ")
		if err != nil {
			return domain.Query{}, err
		}
		start, err = ParseStartYear(in, current)
		if err == nil {
			break
		}
		fmt.Fprintln(p.Out, err)
	}

	q := domain.Query{StartYear: start, EndYear: domain.Today, Type: t}
	if !NeedsEndYear(start, current) {
		return q, nil
	}

	for {
		in, err := p.ask(ctx, lines, "End year (or leave blank for today): ")
		if err != nil {
			return domain.Query{}, err
		}
		end, coerced, err := ParseEndYear(in, start, current)
		if err != nil {
			fmt.Fprintln(p.Out, err)
			continue
		}
		if coerced {
			fmt.Fprintln(p.Out, FutureYearWarning)
		}
		q.EndYear = end
		return q, nil
	}
}

func (p *Prompter) ask(ctx context.Context, lines *bufio.Scanner, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.Out, prompt)
	if !lines.Scan() {
		if err := lines.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrNoInput
	}
	return lines.Text(), nil
}
