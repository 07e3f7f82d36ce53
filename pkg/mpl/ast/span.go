package ast

import (
	"fmt"
	"strings"
)

// Source is a named piece of policy text. Spans point into it.
type Source struct {
	File     string // Path or logical name of the policy
	Contents string // Full text of the policy
}

// NewSource creates a source from a file name and its contents.
func NewSource(file, contents string) *Source {
	return &Source{File: file, Contents: contents}
}

// Line returns the text of the given 1-based line without its terminator.
// It returns "" when the line does not exist.
func (s *Source) Line(n int) string {
	if s == nil || n < 1 {
		return ""
	}
	lines := strings.Split(s.Contents, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n-1], "\r")
}

// Span returns the span covering the byte range [start, end) of the source.
// Offsets are clamped to the contents.
func (s *Source) Span(start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end > len(s.Contents) {
		end = len(s.Contents)
	}
	if start > end {
		start = end
	}

	line, col := 1, 1
	for i := 0; i < start; i++ {
		if s.Contents[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}

	return Span{Source: s, Line: line, Column: col, Start: start, End: end}
}

// Span represents the source location of an expression in a policy.
// It enables precise error reporting with file, line and column information.
type Span struct {
	Source *Source // Text the span points into (may be nil)
	Line   int     // Line number (1-based)
	Column int     // Column number (1-based)
	Start  int     // Byte offset of the first character
	End    int     // Byte offset one past the last character
}

// String returns a human-readable representation of the span.
// Format: "file:line:column"
func (s Span) String() string {
	if !s.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.Source.File, s.Line, s.Column)
}

// IsValid returns true if the span has a source and line information.
func (s Span) IsValid() bool {
	return s.Source != nil && s.Source.File != "" && s.Line > 0
}

// Text returns the source text covered by the span.
func (s Span) Text() string {
	if s.Source == nil || s.Start < 0 || s.End > len(s.Source.Contents) || s.Start > s.End {
		return ""
	}
	return s.Source.Contents[s.Start:s.End]
}

// Width returns the number of bytes covered by the span, at least 1.
func (s Span) Width() int {
	if s.End-s.Start < 1 {
		return 1
	}
	return s.End - s.Start
}
