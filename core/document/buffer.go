package document

import (
	"errors"
	"fmt"
	"os"
	"slices"
)

var ErrNothingToUndo = errors.New("nothing to undo")

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

type Checkpoint int

// Buffer is the editing surface the actions write through.
type Buffer interface {
	Path() string
	Text() string
	GetTextInRange(r Range) string
	SetTextInRange(r Range, text string) error
	Insert(pos int, text string) error
	CreateCheckpoint() Checkpoint
	GroupChangesSinceCheckpoint(cp Checkpoint) error
	RevertToCheckpoint(cp Checkpoint) error
}

// BoundaryFinder locates the two lists of a define call inside a buffer.
type BoundaryFinder interface {
	ImportsRange(buf Buffer) (Range, error)
	ParamsRange(buf Buffer) (Range, error)
}

// TextBuffer is an in-memory Buffer. Every change pushes the previous text on
// an undo history; grouping collapses the changes since a checkpoint into a
// single history entry.
type TextBuffer struct {
	path    string
	text    string
	mode    os.FileMode
	history []string
}

func NewTextBuffer(path, text string) *TextBuffer {
	return &TextBuffer{path: path, text: text, mode: 0o644}
}

func LoadFile(path string) (*TextBuffer, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	buf := NewTextBuffer(path, string(data))
	buf.mode = stat.Mode().Perm()
	return buf, nil
}

func (b *TextBuffer) Save() error {
	if err := os.WriteFile(b.path, []byte(b.text), b.mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.path, err)
	}
	return nil
}

func (b *TextBuffer) Path() string { return b.path }

func (b *TextBuffer) Text() string { return b.text }

func (b *TextBuffer) checkRange(r Range) error {
	if r.Start < 0 || r.End < r.Start || r.End > len(b.text) {
		return fmt.Errorf("range [%d,%d) outside buffer of %d bytes", r.Start, r.End, len(b.text))
	}
	return nil
}

func (b *TextBuffer) GetTextInRange(r Range) string {
	if b.checkRange(r) != nil {
		return ""
	}
	return b.text[r.Start:r.End]
}

func (b *TextBuffer) SetTextInRange(r Range, text string) error {
	if err := b.checkRange(r); err != nil {
		return err
	}
	b.history = append(b.history, b.text)
	b.text = b.text[:r.Start] + text + b.text[r.End:]
	return nil
}

func (b *TextBuffer) Insert(pos int, text string) error {
	return b.SetTextInRange(Range{Start: pos, End: pos}, text)
}

func (b *TextBuffer) CreateCheckpoint() Checkpoint {
	return Checkpoint(len(b.history))
}

func (b *TextBuffer) checkCheckpoint(cp Checkpoint) error {
	if int(cp) < 0 || int(cp) > len(b.history) {
		return fmt.Errorf("unknown checkpoint %d", cp)
	}
	return nil
}

func (b *TextBuffer) GroupChangesSinceCheckpoint(cp Checkpoint) error {
	if err := b.checkCheckpoint(cp); err != nil {
		return err
	}
	if int(cp) < len(b.history) {
		b.history = b.history[:cp+1]
	}
	return nil
}

func (b *TextBuffer) RevertToCheckpoint(cp Checkpoint) error {
	if err := b.checkCheckpoint(cp); err != nil {
		return err
	}
	if int(cp) < len(b.history) {
		b.text = b.history[cp]
		b.history = b.history[:cp]
	}
	return nil
}

// Undo reverts the last change or group of changes.
func (b *TextBuffer) Undo() error {
	if len(b.history) == 0 {
		return ErrNothingToUndo
	}
	return b.RevertToCheckpoint(Checkpoint(len(b.history) - 1))
}

// Edit replaces Range with Text.
type Edit struct {
	Range Range
	Text  string
}

// Transact runs fn as one undoable unit: on error every change fn made is
// reverted, otherwise the changes are grouped.
func Transact(buf Buffer, fn func() error) error {
	cp := buf.CreateCheckpoint()
	if err := fn(); err != nil {
		if revertErr := buf.RevertToCheckpoint(cp); revertErr != nil {
			return errors.Join(err, fmt.Errorf("failed to revert: %w", revertErr))
		}
		return err
	}
	return buf.GroupChangesSinceCheckpoint(cp)
}

// ReplaceRanges applies edits that were computed against the current text.
// They are checked before anything changes and applied from the end of the
// buffer backwards so earlier offsets stay valid.
func ReplaceRanges(buf Buffer, edits ...Edit) error {
	size := len(buf.Text())
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int { return b.Range.Start - a.Range.Start })

	for i, e := range sorted {
		if e.Range.Start < 0 || e.Range.End < e.Range.Start || e.Range.End > size {
			return fmt.Errorf("range [%d,%d) outside buffer of %d bytes", e.Range.Start, e.Range.End, size)
		}
		if i > 0 && e.Range.End > sorted[i-1].Range.Start {
			return fmt.Errorf("ranges [%d,%d) and [%d,%d) overlap",
				e.Range.Start, e.Range.End, sorted[i-1].Range.Start, sorted[i-1].Range.End)
		}
	}

	return Transact(buf, func() error {
		for _, e := range sorted {
			if err := buf.SetTextInRange(e.Range, e.Text); err != nil {
				return err
			}
		}
		return nil
	})
}
