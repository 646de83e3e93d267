package diag

import (
	"strings"

	"golang.org/x/text/width"

	"surgetype/internal/source"
)

// RenderCaretLine renders the source line a diagnostic points at, followed
// by a caret underline aligned to the span. Display columns are computed per
// rune via east-asian width so wide characters keep the carets aligned.
func RenderCaretLine(fs *source.FileSet, span source.Span) (string, bool) {
	if fs == nil {
		return "", false
	}
	file := fs.Get(span.File)
	if file == nil {
		return "", false
	}
	start, end := fs.Resolve(span)
	line := file.GetLine(start.Line)
	if line == "" {
		return "", false
	}

	caretStart := displayWidth(line, int(start.Col)-1)
	caretLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		caretLen = displayWidth(line[min(int(start.Col)-1, len(line)):], int(end.Col-start.Col))
	}
	if caretLen < 1 {
		caretLen = 1
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", caretStart))
	b.WriteString(strings.Repeat("^", caretLen))
	return b.String(), true
}

// displayWidth sums the terminal display width of the first n bytes of s.
func displayWidth(s string, n int) int {
	if n <= 0 {
		return 0
	}
	if n > len(s) {
		n = len(s)
	}
	total := 0
	for _, r := range s[:n] {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
	}
	return total
}
