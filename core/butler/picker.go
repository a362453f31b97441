package butler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

var ErrNoSelection = errors.New("no selection made")

// PromptPicker asks for a choice with a huh select. Accessible mode prints a
// numbered list and reads the number from In, which is what non-terminal
// input needs.
type PromptPicker struct {
	In         io.Reader
	Out        io.Writer
	Accessible bool

	lines *lineReader
}

func (p *PromptPicker) Pick(prompt string, labels []string) (int, error) {
	if p.lines == nil {
		p.lines = &lineReader{r: bufio.NewReader(p.In)}
	}

	options := make([]huh.Option[int], len(labels))
	for i, label := range labels {
		options[i] = huh.NewOption(label, i)
	}

	choice := -1
	sel := huh.NewSelect[int]().
		Title(prompt).
		Options(options...).
		Value(&choice)

	form := huh.NewForm(huh.NewGroup(sel)).
		WithAccessible(p.Accessible).
		WithInput(p.lines).
		WithOutput(p.Out)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, ErrNoSelection
		}
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}
	if choice < 0 || choice >= len(labels) {
		return 0, ErrNoSelection
	}
	return choice, nil
}

// lineReader hands out at most one line per Read, so a form that scans its
// input never consumes answers meant for the next Pick.
type lineReader struct {
	r *bufio.Reader
}

func (l *lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := l.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	return n, nil
}

// MatchPicker chooses the label that starts with Query followed by a space,
// which is how labels render a path, or failing that the only label
// containing Query.
type MatchPicker struct {
	Query string
}

func (p *MatchPicker) Pick(_ string, labels []string) (int, error) {
	for i, label := range labels {
		if strings.HasPrefix(label, p.Query+" ") || label == p.Query {
			return i, nil
		}
	}

	var matches []int
	for i, label := range labels {
		if strings.Contains(label, p.Query) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no module matches %q", p.Query)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("%q is ambiguous, it matches %d modules", p.Query, len(matches))
	}
}
