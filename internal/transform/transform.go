// Package transform builds a litmus.Test from the parse tree produced by
// the syntax package.
//
// The transformer is the single place where the surface language is
// checked for legality. Anything it accepts has a formal mapping in the
// emitter.
package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnoswap-labs/litmus/internal/litmus"
	"github.com/gnoswap-labs/litmus/internal/syntax"
)

// DefaultIntBits is the signed Int bit-width of the default checker bound.
const DefaultIntBits = 6

// Options configures the transformer.
type Options struct {
	// IntBits bounds integer literals to the checker's signed Int width.
	// Zero means DefaultIntBits.
	IntBits int
}

// names the emitter generates; addresses may not shadow them
var generatedName = regexp.MustCompile(`^(r[0-9]+|i[0-9]+(_[rw])?|d[0-9]+(_b[0-9]+(_t[0-9]+)?)?)$`)

type binding struct {
	line int
}

type reference struct {
	name string
	span syntax.Span
}

// Transformer converts one parse tree into one litmus.Test.
// It must not be reused across sources.
type Transformer struct {
	text string
	opts Options

	instructionCount int
	commandCount     int

	test      *litmus.Test
	registers map[string]binding
	regRefs   []reference
}

// New returns a Transformer for the source text the tree was parsed from.
// The text is used to quote offending source in errors.
func New(text string, opts Options) *Transformer {
	if opts.IntBits == 0 {
		opts.IntBits = DefaultIntBits
	}
	return &Transformer{
		text:      text,
		opts:      opts,
		test:      &litmus.Test{},
		registers: make(map[string]binding),
	}
}

// Build parses src and transforms it.
func Build(src string, opts Options) (*litmus.Test, error) {
	f, err := syntax.Parse(src)
	if err != nil {
		return nil, err
	}
	return New(src, opts).Transform(f)
}

// Transform builds the test. The first illegal construct aborts the build.
func (t *Transformer) Transform(f *syntax.File) (*litmus.Test, error) {
	for _, decl := range f.Addresses {
		a, err := t.address(decl)
		if err != nil {
			return nil, err
		}
		t.test.Addresses = append(t.test.Addresses, a)
	}

	for _, decl := range f.Threads {
		th, err := t.thread(decl)
		if err != nil {
			return nil, err
		}
		t.test.Threads = append(t.test.Threads, th)
	}

	for _, decl := range f.Commands {
		c, err := t.command(decl)
		if err != nil {
			return nil, err
		}
		t.test.Commands = append(t.test.Commands, c)
	}

	for _, ref := range t.regRefs {
		if _, ok := t.registers[ref.name]; !ok {
			return nil, t.errorf(ref.span, "register %s is never loaded", ref.name)
		}
	}

	return t.test, nil
}

func (t *Transformer) newID() string {
	c := t.instructionCount
	t.instructionCount++
	return fmt.Sprintf("i%d", c)
}

func (t *Transformer) address(decl *syntax.AddressDecl) (*litmus.Address, error) {
	if t.test.Address(decl.Name) != nil {
		return nil, t.errorf(decl.Span, "address %s declared twice", decl.Name)
	}
	if generatedName.MatchString(decl.Name) {
		return nil, t.errorf(decl.Span, "address name %s collides with a generated name", decl.Name)
	}

	a := &litmus.Address{
		Name:  decl.Name,
		Space: decl.Space,
		Line:  decl.Span.Line,
	}
	switch decl.AliasType {
	case "":
		return a, nil
	case "virtually":
		a.Alias = litmus.AliasVirtual
	case "physically":
		a.Alias = litmus.AliasPhysical
	default:
		return nil, t.errorf(decl.Span, "unknown alias type %q", decl.AliasType)
	}

	if decl.Alias == decl.Name {
		return nil, t.errorf(decl.Span, "address %s cannot alias itself", decl.Name)
	}
	if t.test.Address(decl.Alias) == nil {
		return nil, t.errorf(decl.Span, "address %s aliases undeclared address %s", decl.Name, decl.Alias)
	}
	a.Target = decl.Alias
	return a, nil
}

func (t *Transformer) thread(decl *syntax.ThreadDecl) (*litmus.Thread, error) {
	th := &litmus.Thread{
		ID: litmus.ThreadID{
			Device: decl.Device,
			Block:  decl.Block,
			Thread: decl.Thread,
		},
		Line: decl.Span.Line,
	}
	for _, node := range decl.Insts {
		inst, err := t.instruction(node)
		if err != nil {
			return nil, err
		}
		th.Insts = append(th.Insts, inst)
	}
	return th, nil
}

func (t *Transformer) command(decl *syntax.CommandDecl) (*litmus.Command, error) {
	c := &litmus.Command{Line: decl.Span.Line}
	switch decl.Keyword {
	case "permit":
		c.Kind, c.Expect = litmus.Permit, litmus.ExpectReachable
	case "check":
		c.Kind, c.Expect = litmus.Check, litmus.ExpectReachable
	case "assert":
		c.Kind, c.Expect = litmus.Assert, litmus.ExpectImpossible
	default:
		return nil, t.errorf(decl.Span, "unknown command %q", decl.Keyword)
	}

	c.Name = t.commandName(c.Kind, decl.Name)
	t.commandCount++
	if t.test.Command(c.Name) != nil {
		return nil, t.errorf(decl.Span, "command %s defined twice", c.Name)
	}

	cond, err := t.condition(decl.Cond)
	if err != nil {
		return nil, err
	}
	c.Cond = cond
	return c, nil
}

// commandName numbers unnamed commands with one counter shared by every
// command kind. check commands always carry the "check_" prefix.
func (t *Transformer) commandName(kind litmus.CommandKind, name string) string {
	if name == "" {
		return fmt.Sprintf("%s_command%d", kind, t.commandCount)
	}
	if kind == litmus.Check && !strings.HasPrefix(name, "check_") {
		return "check_" + name
	}
	return name
}

func (t *Transformer) condition(node syntax.CondNode) (litmus.Condition, error) {
	switch n := node.(type) {
	case *syntax.CompareNode:
		a, err := t.value(n.A)
		if err != nil {
			return nil, err
		}
		b, err := t.value(n.B)
		if err != nil {
			return nil, err
		}
		var c litmus.Condition = litmus.Equal{A: a, B: b}
		if n.Negated {
			c = litmus.Not{X: c}
		}
		return c, nil
	case *syntax.NotNode:
		x, err := t.condition(n.X)
		if err != nil {
			return nil, err
		}
		return litmus.Not{X: x}, nil
	case *syntax.BinaryNode:
		a, err := t.condition(n.A)
		if err != nil {
			return nil, err
		}
		b, err := t.condition(n.B)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "and":
			return litmus.And{A: a, B: b}, nil
		case "or":
			return litmus.Or{A: a, B: b}, nil
		}
		return nil, fmt.Errorf("unknown boolean operator %q", n.Op)
	default:
		return nil, fmt.Errorf("unknown condition node %T", node)
	}
}

// value converts a register or integer operand. Register uses are checked
// against bindings once the whole test is known.
func (t *Transformer) value(op syntax.Operand) (litmus.Value, error) {
	switch op.Kind {
	case syntax.OperandInteger:
		lo, hi := t.intRange()
		if op.N < lo || op.N > hi {
			return nil, t.errorf(op.Span, "integer %d does not fit in %d-bit Int [%d, %d]", op.N, t.opts.IntBits, lo, hi)
		}
		return litmus.Int(op.N), nil
	case syntax.OperandRegister:
		t.regRefs = append(t.regRefs, reference{name: op.Name, span: op.Span})
		return litmus.Reg(op.Name), nil
	default:
		return nil, t.errorf(op.Span, "expected a register or an integer, found %s", op)
	}
}

func (t *Transformer) intRange() (int, int) {
	half := 1 << (t.opts.IntBits - 1)
	return -half, half - 1
}
