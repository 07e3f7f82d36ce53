package errors

import (
	"fmt"
	"os"
	"strings"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
)

// ExtractContext renders the lines surrounding span with the offending line
// marked and the spanned columns underlined. The source contents carried by
// the span are used; when they are empty the file is read from disk.
func ExtractContext(span ast.Span, contextLines int) string {
	if !span.IsValid() {
		return ""
	}

	contents := span.Source.Contents
	if contents == "" {
		data, err := os.ReadFile(span.Source.File)
		if err != nil {
			// File not accessible, return empty context
			return ""
		}
		contents = string(data)
	}

	lines := strings.Split(strings.ReplaceAll(contents, "\r\n", "\n"), "\n")
	errorLine := span.Line - 1
	if errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	endLine := errorLine + contextLines
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine && span.Column > 0 {
			carets := span.Width()
			if rest := len(lines[i]) - (span.Column - 1); rest > 0 && carets > rest {
				carets = rest
			}
			sb.WriteString(fmt.Sprintf("   %s | %s%s\n",
				strings.Repeat(" ", width),
				strings.Repeat(" ", span.Column-1),
				strings.Repeat("^", carets)))
		}
	}

	return sb.String()
}

// WithContext attaches the source excerpt for the error's span.
func WithContext(err *Error, contextLines int) *Error {
	if err.Span.IsValid() {
		err.Context = ExtractContext(err.Span, contextLines)
	}
	return err
}

// AddContextToError adds two lines of context on either side of the span.
func AddContextToError(err *Error) *Error {
	return WithContext(err, 2)
}
