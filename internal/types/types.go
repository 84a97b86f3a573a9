package types

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a problem found while compiling or checking a test.
type Diagnostic struct {
	// Kind is the stage that raised it: syntax, semantic, mapping,
	// template, checker or io.
	Kind     string
	Filename string
	// Instance names the template instance; empty for plain tests.
	Instance string
	Line     int // 0 when the problem has no source position
	Col      int
	Message  string
	Severity Severity
}

// Outcome is one checker query result attributed to its source command.
type Outcome struct {
	Filename string
	Instance string
	Command  string
	Line     int
	Sanity   bool
	SAT      bool
	// Broken is set when the result contradicts the command's
	// expectation; Informational when the command carried none.
	Broken        bool
	Informational bool
	Message       string
	Detail        []string
	Cached        bool
}
