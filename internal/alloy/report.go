package alloy

import (
	"regexp"
	"strings"
)

var outcomeLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*): (.*)$`)

// Verdict classifies one query result against its expectation.
type Verdict int

const (
	// Informational results carry no expectation ("check_" queries and
	// satisfied sanity queries).
	Informational Verdict = iota
	Matches
	Breaks
)

func (v Verdict) String() string {
	switch v {
	case Matches:
		return "matches expectation"
	case Breaks:
		return "breaks expectation"
	default:
		return "informational"
	}
}

// Outcome is one query result printed by the checker.
type Outcome struct {
	Command string
	// Sanity is set for the witness queries emitted ahead of each command.
	Sanity  bool
	SAT     bool
	Verdict Verdict
	Message string
	// Detail holds the indented lines printed under the result.
	Detail []string
}

// Report is everything the checker printed.
type Report struct {
	Outcomes []Outcome
	// Other holds stdout lines that are not part of an outcome.
	Other  []string
	Stderr string
}

// Broken returns the outcomes that break their expectation.
func (r *Report) Broken() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Verdict == Breaks {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the result of the named query, if printed.
func (r *Report) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Command == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// ParseReport reads checker output. Each result is a line
// "name: SAT|UNSAT, ..." optionally followed by indented detail lines;
// a blank line ends the current result.
func ParseReport(out string) *Report {
	r := &Report{}
	current := -1
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			current = -1
			continue
		}
		if m := outcomeLine.FindStringSubmatch(line); m != nil {
			r.Outcomes = append(r.Outcomes, parseOutcome(m[1], m[2]))
			current = len(r.Outcomes) - 1
			continue
		}
		if current >= 0 && (line[0] == '\t' || line[0] == ' ') {
			detail := strings.TrimSpace(line)
			if strings.Trim(detail, "!") != "" {
				r.Outcomes[current].Detail = append(r.Outcomes[current].Detail, detail)
			}
			continue
		}
		current = -1
		r.Other = append(r.Other, line)
	}
	return r
}

func parseOutcome(name, msg string) Outcome {
	o := Outcome{
		Command: name,
		Sanity:  name == "sanity" || strings.HasPrefix(name, "sanity_"),
		SAT:     strings.HasPrefix(msg, "SAT"),
		Message: msg,
	}
	switch {
	case strings.Contains(msg, "breaks expectation"):
		o.Verdict = Breaks
	case strings.Contains(msg, "matches expectation"):
		o.Verdict = Matches
	}
	return o
}

// Attribute maps a query name back to the source line of the command
// it was emitted for, looking through the sanity prefix. It returns 0
// when the name is unknown.
func Attribute(name string, lines map[string]int) int {
	if l, ok := lines[name]; ok {
		return l
	}
	if base, ok := strings.CutPrefix(name, "sanity_"); ok {
		return lines[base]
	}
	return 0
}
