package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	tt "github.com/gnoswap-labs/litmus/internal/types"
)

const tabWidth = 8

// diagnostic kinds with a dedicated layout
const (
	KindChecker = "checker"
	KindIO      = "io"
)

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	kindStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

// SourceCode is the text a diagnostic points into, split into lines
// without their terminators.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits text into lines.
func NewSourceCode(text string) *SourceCode {
	text = strings.TrimSuffix(text, "\n")
	return &SourceCode{Lines: strings.Split(text, "\n")}
}

// ReadSourceCode loads filename for snippet rendering.
func ReadSourceCode(filename string) (*SourceCode, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(string(data)), nil
}

// diagnosticFormatter supplies the text template a diagnostic is
// rendered with.
type diagnosticFormatter interface {
	DiagnosticTemplate() string
}

// getDiagnosticFormatter picks the layout for a diagnostic. Problems
// without a usable source position get the summary layout.
func getDiagnosticFormatter(d tt.Diagnostic, snippet *SourceCode) diagnosticFormatter {
	switch {
	case d.Kind == KindChecker || d.Kind == KindIO:
		return &SummaryFormatter{}
	case snippet == nil || !isValidLine(d.Line, snippet.Lines):
		return &SummaryFormatter{}
	default:
		return &SourceFormatter{}
	}
}

// GenerateFormattedDiagnostics renders diagnostics against the source
// they were raised for. snippet may be nil.
func GenerateFormattedDiagnostics(diags []tt.Diagnostic, snippet *SourceCode) string {
	var builder strings.Builder
	for _, d := range diags {
		builder.WriteString(buildDiagnostic(d, snippet, getDiagnosticFormatter(d, snippet)))
	}
	return builder.String()
}

/***** Diagnostic Formatter Builder *****/

type DiagnosticData struct {
	Kind            string
	Severity        string
	Filename        string
	Instance        string
	Line            int
	Col             int
	Message         string
	Padding         string
	MaxLineNumWidth int
	SnippetLines    []string
}

func buildDiagnostic(d tt.Diagnostic, snippet *SourceCode, formatter diagnosticFormatter) string {
	maxLineNumWidth := calculateMaxLineNumWidth(d.Line)

	data := DiagnosticData{
		Kind:            d.Kind,
		Severity:        d.Severity.String(),
		Filename:        d.Filename,
		Instance:        d.Instance,
		Line:            d.Line,
		Col:             d.Col,
		Message:         d.Message,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		MaxLineNumWidth: maxLineNumWidth,
	}
	if snippet != nil {
		data.SnippetLines = snippet.Lines
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             codeSnippet,
		"underlineAndMessage": underlineAndMessage,
		"message":             message,
		"note":                note,
	}

	tmpl := template.Must(template.New("diagnostic").Funcs(funcMap).Parse(formatter.DiagnosticTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting diagnostic: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(kind string, severity string, maxLineNumWidth int, filename string, line int, col int) string {
	var endString string
	switch severity {
	case "error":
		endString = errorStyle.Sprint("error: ")
	case "warning":
		endString = warningStyle.Sprint("warning: ")
	default:
		endString = messageStyle.Sprint("info: ")
	}

	endString += kindStyle.Sprintf("%s\n", kind)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s\n", location(filename, line, col))

	return endString
}

func location(filename string, line, col int) string {
	switch {
	case line > 0 && col > 0:
		return fmt.Sprintf("%s:%d:%d", filename, line, col)
	case line > 0:
		return fmt.Sprintf("%s:%d", filename, line)
	default:
		return filename
	}
}

func codeSnippet(snippetLines []string, line int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	if !isValidLine(line, snippetLines) {
		return endString
	}

	text := expandTabs(strings.TrimLeftFunc(snippetLines[line-1], unicode.IsSpace))
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += lineStyle.Sprintf("%s | ", lineNum) + noStyle.Sprintf("%s\n", text)
	return endString
}

// underlineAndMessage marks the source from col to the end of the line.
// The indent stripped by codeSnippet is not underlined.
func underlineAndMessage(msg string, padding string, line int, col int, snippetLines []string) string {
	if !isValidLine(line, snippetLines) {
		return message(msg, padding)
	}

	src := strings.TrimRightFunc(snippetLines[line-1], unicode.IsSpace)
	indent := src[:len(src)-len(strings.TrimLeftFunc(src, unicode.IsSpace))]
	indentWidth := calculateVisualColumn(indent, len(indent)+1)

	start := 0
	if col > 0 {
		start = calculateVisualColumn(src, col) - indentWidth
	}
	if start < 0 {
		start = 0
	}
	end := calculateVisualColumn(src, len(src)+1) - indentWidth
	length := end - start
	if length < 1 {
		length = 1
	}

	endString := lineStyle.Sprintf("%s| ", padding)
	endString += strings.Repeat(" ", start)
	endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", length))
	endString += message(msg, padding)
	return endString
}

func message(msg string, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s\n", msg)
}

func note(instance string, padding string) string {
	if instance == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + suggestionStyle.Sprint("note: ") + noStyle.Sprintf("in template instance %s\n", instance)
}

func isValidLine(line int, snippetLines []string) bool {
	return line > 0 && line <= len(snippetLines)
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

func expandTabs(line string) string {
	var b strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(ch)
		col++
	}
	return b.String()
}
