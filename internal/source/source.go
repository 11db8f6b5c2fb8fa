// Package source provides input handles and source code position tracking
// for the Aster syntax front end. Inputs may be whole files or slices of a
// larger buffer; slices remap local offsets back to the enclosing buffer so
// diagnostics always report absolute positions.
package source

import (
	"fmt"
	"os"
	"path/filepath"
)

// Input is a handle over a character buffer to be parsed.
type Input struct {
	Filename string
	Content  []byte

	// base is the offset of this input within its outermost enclosing
	// buffer. Zero for whole-file and whole-string inputs.
	base int
}

// FromString wraps an in-memory string as an input.
func FromString(text string) *Input {
	return &Input{Filename: "<input>", Content: []byte(text)}
}

// FromFile reads path and wraps its contents as an input.
func FromFile(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return &Input{Filename: path, Content: data}, nil
}

// Named returns a copy of the input carrying the given display name.
func Named(name, text string) *Input {
	return &Input{Filename: name, Content: []byte(text)}
}

// Slice returns an input over Content[start:end) that remembers its place in
// the enclosing buffer. start and end are local to in.
func (in *Input) Slice(start, end int) *Input {
	if start < 0 {
		start = 0
	}
	if end > len(in.Content) {
		end = len(in.Content)
	}
	if end < start {
		end = start
	}
	return &Input{
		Filename: in.Filename,
		Content:  in.Content[start:end],
		base:     in.base + start,
	}
}

// Abs remaps a local offset to an absolute offset in the outermost buffer.
func (in *Input) Abs(offset int) int {
	return in.base + offset
}

// Text returns the buffer contents as a string.
func (in *Input) Text() string {
	return string(in.Content)
}

// Position represents a single point in source code.
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// After returns true if this position comes after other.
func (p Position) After(other Position) bool {
	return p.Offset > other.Offset
}

// Span represents a range of source code between two positions. Start is
// inclusive, End exclusive.
type Span struct {
	Start Position
	End   Position
}

// IsValid returns true if the span is valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() && s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span.
func (s Span) String() string {
	if s.Start.Filename != "" {
		name := filepath.Base(s.Start.Filename)
		if s.Start.Line == s.End.Line {
			return fmt.Sprintf("%s:%d:%d-%d", name, s.Start.Line, s.Start.Column, s.End.Column)
		}
		return fmt.Sprintf("%s:%d:%d-%d:%d", name, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains returns true if the span contains the given position.
func (s Span) Contains(pos Position) bool {
	return s.Start.Offset <= pos.Offset && pos.Offset < s.End.Offset
}

// Union returns a span that encompasses both this span and other.
func (s Span) Union(other Span) Span {
	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := s.End
	if other.End.After(end) {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// SpanBetween builds the span from start to end.
func SpanBetween(start, end Position) Span {
	return Span{Start: start, End: end}
}
