package formatter

// SourceFormatter shows the offending source line under the header.
type SourceFormatter struct{}

func (f *SourceFormatter) DiagnosticTemplate() string {
	return `{{header .Kind .Severity .MaxLineNumWidth .Filename .Line .Col}}
{{- snippet .SnippetLines .Line .MaxLineNumWidth .Padding}}
{{- underlineAndMessage .Message .Padding .Line .Col .SnippetLines}}
{{- note .Instance .Padding}}
`
}

// SummaryFormatter is used when there is no source line to show.
type SummaryFormatter struct{}

func (f *SummaryFormatter) DiagnosticTemplate() string {
	return `{{header .Kind .Severity .MaxLineNumWidth .Filename .Line .Col}}
{{- message .Message .Padding}}
{{- note .Instance .Padding}}
`
}
