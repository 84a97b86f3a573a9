package emitter

// Entry is one fragment of emitted text attributed to a source line.
// Line is zero for fragments with no source counterpart.
type Entry struct {
	Line int
	Text string
}

// Listing collects the fragments worth showing next to the source:
// thread headers, instructions in assembly form, and commands.
type Listing struct {
	Entries []Entry
}

func (l *Listing) add(line int, text string) {
	if l == nil {
		return
	}
	l.Entries = append(l.Entries, Entry{Line: line, Text: text})
}

// Lines returns the source lines the listing covers, in order of first
// appearance.
func (l *Listing) Lines() []int {
	seen := make(map[int]bool)
	var out []int
	for _, e := range l.Entries {
		if e.Line == 0 || seen[e.Line] {
			continue
		}
		seen[e.Line] = true
		out = append(out, e.Line)
	}
	return out
}
