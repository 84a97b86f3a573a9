package emitter

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/litmus/internal/litmus"
)

// SanityPrefix names the witness query emitted ahead of each command.
const SanityPrefix = "sanity_"

// commands emits the whole-test sanity run, then for each command a
// sanity run with an always-true condition followed by the real query.
// Commands come last so every register predicate is declared.
func (e *Emitter) commands(cmds []*litmus.Command) error {
	e.query("run", "sanity", e.opts.Marker, 0)

	preds := append([]string{e.opts.Marker}, e.regPreds...)
	for _, c := range cmds {
		cond, err := e.condition(c.Cond)
		if err != nil {
			return fmt.Errorf("command %s: %w", c.Name, err)
		}
		e.query("run", SanityPrefix+c.Name, "", c.Line)

		switch c.Expect {
		case litmus.ExpectImpossible:
			e.query("check", c.Name, strings.Join(preds, " => ")+" => ("+cond+")", c.Line)
		default:
			e.query("run", c.Name, strings.Join(preds, " and ")+" and ("+cond+")", c.Line)
		}
	}
	return nil
}

func (e *Emitter) query(mode, name, pred string, line int) {
	body := "{ }"
	if pred != "" {
		body = "{ " + pred + " }"
	}
	q := fmt.Sprintf("%s %s %s for %d but %d Int", mode, name, body, e.opts.Scope, e.opts.IntBits)
	e.write("%s\n\n", q)
	e.opts.Listing.add(line, "\n"+q)
}

func (e *Emitter) condition(c litmus.Condition) (string, error) {
	switch c := c.(type) {
	case litmus.Equal:
		a, err := e.value(c.A)
		if err != nil {
			return "", err
		}
		b, err := e.value(c.B)
		if err != nil {
			return "", err
		}
		return "(" + a + " = " + b + ")", nil
	case litmus.Not:
		x, err := e.condition(c.X)
		if err != nil {
			return "", err
		}
		return "not " + x, nil
	case litmus.And:
		return e.binary("and", c.A, c.B)
	case litmus.Or:
		return e.binary("or", c.A, c.B)
	default:
		return "", &MappingError{Kind: "condition", Value: fmt.Sprintf("%T", c)}
	}
}

func (e *Emitter) binary(op string, a, b litmus.Condition) (string, error) {
	l, err := e.condition(a)
	if err != nil {
		return "", err
	}
	r, err := e.condition(b)
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}
