// Package template expands a parameterised litmus source into instances.
//
// A templated source is a test body, a line holding only "$$", then one
// parameter list per line. Parameters are separated by '|' and replace
// $0, $1, ... in the body. Blank lines and lines starting with '#' in the
// parameter section are ignored.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Separator divides the body from the parameter lists.
const Separator = "$$"

var placeholder = regexp.MustCompile(`\$([0-9]+)`)

// Error is a malformed parameter section.
type Error struct {
	Line int // 0 when not tied to a line
	Msg  string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Instance is one concrete test produced from a source.
type Instance struct {
	// Index is the 0-based position of the parameter list, or 0 for an
	// untemplated source.
	Index  int
	Params []string
	Source string
	// Line is the source line of the parameter list; 0 when untemplated.
	Line int
}

// Name labels the instance for diagnostics, e.g. "#3 [ld | st]".
func (i Instance) Name() string {
	if len(i.Params) == 0 {
		return fmt.Sprintf("#%d", i.Index+1)
	}
	return fmt.Sprintf("#%d [%s]", i.Index+1, strings.Join(i.Params, " | "))
}

// IsTemplate reports whether src carries a parameter section.
func IsTemplate(src string) bool {
	_, _, ok := split(src)
	return ok
}

// Expand returns the instances of src. An untemplated source yields a
// single instance holding src unchanged.
func Expand(src string) ([]Instance, error) {
	body, params, ok := split(src)
	if !ok {
		return []Instance{{Source: src}}, nil
	}

	used := placeholders(body)
	bodyLines := strings.Count(body, "\n") + 1

	var out []Instance
	for n, line := range strings.Split(params, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list := strings.Split(line, "|")
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}
		lineNo := bodyLines + n + 1
		if len(used) > 0 && used[len(used)-1] >= len(list) {
			return nil, &Error{
				Line: lineNo,
				Msg:  fmt.Sprintf("template uses $%d but only %d parameters are given", used[len(used)-1], len(list)),
			}
		}
		out = append(out, Instance{
			Index:  len(out),
			Params: list,
			Source: substitute(body, list),
			Line:   lineNo,
		})
	}

	if len(out) == 0 {
		return nil, &Error{Msg: "template has no parameter lists"}
	}
	return out, nil
}

// Skip drops the first n instances.
func Skip(instances []Instance, n int) []Instance {
	if n <= 0 {
		return instances
	}
	if n >= len(instances) {
		return nil
	}
	return instances[n:]
}

// split cuts src at the separator line.
func split(src string) (body, params string, ok bool) {
	if strings.HasPrefix(src, Separator+"\n") {
		return "", src[len(Separator)+1:], true
	}
	i := strings.Index(src, "\n"+Separator+"\n")
	if i < 0 {
		if strings.HasSuffix(src, "\n"+Separator) {
			return src[:len(src)-len(Separator)], "", true
		}
		return "", "", false
	}
	return src[:i+1], src[i+len(Separator)+2:], true
}

// placeholders returns the distinct indices referenced in body, ascending.
func placeholders(body string) []int {
	seen := make(map[int]bool)
	for _, m := range placeholder.FindAllStringSubmatch(body, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			seen[n] = true
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// substitute replaces the highest index first so $1 never clobbers $10.
func substitute(body string, params []string) string {
	for i := len(params) - 1; i >= 0; i-- {
		body = strings.ReplaceAll(body, "$"+strconv.Itoa(i), params[i])
	}
	return body
}
