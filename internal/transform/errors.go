package transform

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/litmus/internal/syntax"
)

// SemanticError is a well-formed construct the litmus language does not
// allow: an illegal qualifier combination, an unknown mnemonic, an
// undeclared name or a redefinition.
type SemanticError struct {
	Line int
	Col  int
	Text string // offending source text, newlines folded
	Msg  string
}

func (e *SemanticError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: '%s': %s", e.Line, e.Text, e.Msg)
}

func (t *Transformer) errorf(span syntax.Span, format string, args ...any) error {
	return &SemanticError{
		Line: span.Line,
		Col:  span.Col,
		Text: t.snippet(span),
		Msg:  fmt.Sprintf(format, args...),
	}
}

// snippet returns the source covered by span with each line trimmed and
// the lines joined by single spaces.
func (t *Transformer) snippet(span syntax.Span) string {
	if span.Offset < 0 || span.End > len(t.text) || span.Offset >= span.End {
		return ""
	}
	lines := strings.Split(t.text[span.Offset:span.End], "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " ")
}
