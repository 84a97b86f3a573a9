// Package emitter lowers a litmus.Test into Alloy text.
//
// Every qualifier is translated through a closed switch; a value without
// an Alloy counterpart fails with a *MappingError instead of degrading.
// The output is a pure function of the test and the options: the same
// input always yields the same bytes, which is what lets checker reports
// be matched back to source lines by name.
package emitter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gnoswap-labs/litmus/internal/litmus"
	"github.com/gnoswap-labs/litmus/internal/transform"
)

const (
	DefaultMarker  = "ptx_mm"
	DefaultScope   = 1
	DefaultIntBits = 6
)

// Options configures an Emitter. Zero fields take their defaults.
type Options struct {
	// Marker is the model predicate every query is conditioned on.
	Marker string
	// Scope and IntBits form the bound clause "for Scope but IntBits Int".
	Scope   int
	IntBits int

	Logger *zap.Logger
	// Listing, when set, receives source-attributed fragments.
	Listing *Listing
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Scope == 0 {
		o.Scope = DefaultScope
	}
	if o.IntBits == 0 {
		o.IntBits = DefaultIntBits
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Emitter holds the generation state of one compilation. It is not safe
// for concurrent use and must not be reused.
type Emitter struct {
	opts Options
	log  *zap.Logger
	buf  strings.Builder

	devices map[string]bool
	blocks  map[string]bool
	threads map[string]litmus.ThreadID

	// program-order head of each thread
	po      map[string]string
	current string

	// register predicates in declaration order
	regPreds []string
}

// New returns an Emitter whose output starts with the Alloy model text.
func New(model string, opts Options) *Emitter {
	opts = opts.withDefaults()
	e := &Emitter{
		opts:    opts,
		log:     opts.Logger,
		devices: make(map[string]bool),
		blocks:  make(map[string]bool),
		threads: make(map[string]litmus.ThreadID),
		po:      make(map[string]string),
	}
	e.buf.WriteString(model)
	e.buf.WriteString("\n")
	return e
}

// Emit is a shorthand for New(model, opts).Emit(test).
func Emit(model string, test *litmus.Test, opts Options) (string, error) {
	return New(model, opts).Emit(test)
}

// Emit writes the addresses, threads and commands of test, in that order,
// and returns the complete Alloy text.
func (e *Emitter) Emit(test *litmus.Test) (string, error) {
	for _, a := range test.Addresses {
		e.address(a)
	}

	for _, th := range test.Threads {
		if err := e.thread(th); err != nil {
			return "", err
		}
	}

	if err := e.commands(test.Commands); err != nil {
		return "", err
	}

	return e.buf.String(), nil
}

func (e *Emitter) write(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	e.log.Debug("alloy", zap.String("text", strings.TrimRight(text, "\n")))
	e.buf.WriteString(text)
}

func (e *Emitter) address(a *litmus.Address) {
	switch a.Alias {
	case litmus.AliasVirtual:
		// a second name for the same location
		e.write("fun %s : Address { %s }\n", a.Name, a.Target)
	case litmus.AliasPhysical:
		e.write("one sig %s extends Address {}\n", a.Name)
		e.write("fact { %s.alias = %s }\n", a.Name, a.Target)
	default:
		e.write("one sig %s extends Address {}\n", a.Name)
		e.write("fact { no %s.alias }\n", a.Name)
	}
}

func (e *Emitter) thread(th *litmus.Thread) error {
	if err := e.threadHeader(th.ID, th.Line); err != nil {
		return err
	}
	for _, inst := range th.Insts {
		if err := e.instruction(inst); err != nil {
			return fmt.Errorf("%s: %w", inst.ID(), err)
		}
	}
	return nil
}

// threadHeader declares the device, block and thread of id the first
// time each is seen. A thread seen before continues its program order.
func (e *Emitter) threadHeader(id litmus.ThreadID, line int) error {
	t := id.ThreadName()
	e.write("\n// Thread %s\n", t)
	e.opts.Listing.add(line, "\n// Thread "+t)
	e.current = t

	if prev, ok := e.threads[t]; ok {
		// Only reachable if two identities ever derive the same name.
		if prev != id {
			return &transform.SemanticError{Line: line, Msg: fmt.Sprintf("thread %s multiply defined", t)}
		}
		e.write("// (continued...)\n")
		return nil
	}

	d, b := id.DeviceName(), id.BlockName()
	if !e.devices[d] {
		e.devices[d] = true
		e.write("one sig %s extends Device {}\n", d)
	}
	if !e.blocks[b] {
		e.blocks[b] = true
		e.write("one sig %s extends Block {} { this in %s.blocks }\n", b, d)
	}
	e.write("one sig %s extends Thread {} { this in %s.threads }\n", t, b)

	e.threads[t] = id
	e.po[t] = t + ".start"
	return nil
}

func (e *Emitter) instruction(inst litmus.Instruction) error {
	switch i := inst.(type) {
	case *litmus.Load:
		return e.load(access{
			name: i.Name, sem: i.Sem, scope: i.Scope, proxy: i.Proxy,
			addr: i.Src, line: i.Line,
		}, i.Dst, i.Return)
	case *litmus.Store:
		v, err := e.value(i.Value)
		if err != nil {
			return err
		}
		return e.store(access{
			name: i.Name, sem: i.Sem, scope: i.Scope, proxy: i.Proxy,
			addr: i.Dst, line: i.Line,
		}, v, false)
	case *litmus.Atom:
		return e.atom(i)
	case *litmus.Fence:
		return e.fence(i)
	case *litmus.ProxyFence:
		e.comment(i.Name, "fence.proxy."+i.Proxy.String(), i.Line)
		p, err := proxySig(i.Proxy)
		if err != nil {
			return err
		}
		e.declare(i.Name, "ProxyFence")
		e.write("fact { %s.proxy_fence_proxy = %s }\n", i.Name, p)
		return nil
	case *litmus.AliasFence:
		e.comment(i.Name, "fence.proxy.alias", i.Line)
		e.declare(i.Name, "AliasFence")
		return nil
	default:
		return &MappingError{Kind: "instruction", Value: fmt.Sprintf("%T", inst)}
	}
}

// comment labels the next declaration with its assembly form. It leaves
// the line open; declare starts with a newline.
func (e *Emitter) comment(name, asm string, line int) {
	e.write("// operation %s: %s", name, asm)
	e.opts.Listing.add(line, asm)
}

// declare introduces an instruction signature and places it at the head
// of the current thread's program order.
func (e *Emitter) declare(name, kind string) {
	e.write("\n")
	e.write("one sig %s extends %s {}\n", name, kind)
	e.write("fact { %s = %s }\n", name, e.po[e.current])
	e.po[e.current] = name + ".po"
}

func (e *Emitter) scoped(name, kind string, scope litmus.Scope) error {
	set, err := scopeSet(scope)
	if err != nil {
		return err
	}
	e.declare(name, kind)
	e.write("fact { %s.scope in %s }\n", name, set)
	return nil
}

// access is the part shared by every memory operation.
type access struct {
	name  string
	sem   litmus.Semantic
	scope litmus.Scope
	proxy litmus.Proxy
	addr  string
	line  int
}

func (a access) asm(op string) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteString("." + a.sem.String())
	if a.scope != litmus.ScopeNone {
		b.WriteString("." + a.scope.String())
	}
	b.WriteString(".proxy_" + a.proxy.String())
	return b.String()
}

func (e *Emitter) memory(a access, kind string) error {
	p, err := proxySig(a.proxy)
	if err != nil {
		return err
	}
	if err := e.scoped(a.name, kind, a.scope); err != nil {
		return err
	}
	e.write("fact { %s.proxy = %s }\n", a.name, p)
	e.write("fact { %s.address = %s }\n", a.name, a.addr)
	return nil
}

func (e *Emitter) load(a access, dst string, ret litmus.Value) error {
	asm := fmt.Sprintf("%s %s, %s", a.asm("ld"), dst, a.addr)
	if !litmus.IsNoValue(ret) {
		asm += " == " + ret.String()
	}
	e.comment(a.name, asm, a.line)

	kind, err := readKind(a.sem)
	if err != nil {
		return err
	}
	if err := e.memory(a, kind); err != nil {
		return err
	}
	return e.register(dst, a.name+".value", ret)
}

func (e *Emitter) store(a access, value string, rmw bool) error {
	e.comment(a.name, fmt.Sprintf("%s %s, %s", a.asm("st"), a.addr, value), a.line)

	kind, err := writeKind(a.sem)
	if err != nil {
		return err
	}
	if err := e.memory(a, kind); err != nil {
		return err
	}
	e.write("fact { %s.value = %s }\n", a.name, value)
	if rmw {
		e.write("fact { some %s.~rmw }\n", a.name)
	} else {
		e.write("fact { no %s.~rmw }\n", a.name)
	}
	return nil
}

// atom lowers a read-modify-write into a read "<id>_r" immediately
// followed in program order by its paired write "<id>_w".
func (e *Emitter) atom(i *litmus.Atom) error {
	rsem, wsem, err := splitAtomic(i.Sem)
	if err != nil {
		return err
	}
	operand, err := e.value(i.Value)
	if err != nil {
		return err
	}

	read := access{
		name: i.Name + "_r", sem: rsem, scope: i.Scope, proxy: i.Proxy,
		addr: i.Src, line: i.Line,
	}
	if err := e.load(read, i.Dst, i.Return); err != nil {
		return err
	}

	written, err := combine(i.AtomicOp, read.name+".value", operand)
	if err != nil {
		return err
	}
	write := read
	write.name, write.sem = i.Name+"_w", wsem
	return e.store(write, written, true)
}

func (e *Emitter) fence(i *litmus.Fence) error {
	asm := "fence." + i.Sem.String()
	if i.Scope != litmus.ScopeNone {
		asm += "." + i.Scope.String()
	}
	e.comment(i.Name, asm, i.Line)

	kind, err := fenceKind(i.Sem)
	if err != nil {
		return err
	}
	return e.scoped(i.Name, kind, i.Scope)
}

// register declares the single-valued signature of reg and, when the
// source gave an expected value, the predicate "<reg>_value". A missing
// expectation leaves the register unconstrained.
func (e *Emitter) register(reg, observed string, ret litmus.Value) error {
	if reg != "" {
		e.write("one sig %s {\n", reg)
		e.write("  value: one Int,\n")
		e.write("} {\n")
		e.write("  value = %s\n", observed)
		e.write("}\n")
	}

	if litmus.IsNoValue(ret) {
		e.write("// no specified return value\n")
		return nil
	}
	expected, err := e.value(ret)
	if err != nil {
		return err
	}
	pred := reg + "_value"
	e.write("pred %s { %s = %s }\n", pred, observed, expected)
	e.regPreds = append(e.regPreds, pred)
	return nil
}

func (e *Emitter) value(v litmus.Value) (string, error) {
	switch v := v.(type) {
	case litmus.NamedValue:
		return v.Name + ".value", nil
	case litmus.Integer:
		return v.String(), nil
	case litmus.Arithmetic:
		if len(v.Operands) == 0 {
			return "", &MappingError{Kind: "empty arithmetic", Value: v.Op.String()}
		}
		acc, err := e.value(v.Operands[0])
		if err != nil {
			return "", err
		}
		for _, o := range v.Operands[1:] {
			s, err := e.value(o)
			if err != nil {
				return "", err
			}
			if acc, err = combine(v.Op, acc, s); err != nil {
				return "", err
			}
		}
		return acc, nil
	default:
		return "", &MappingError{Kind: "value", Value: fmt.Sprintf("%v", v)}
	}
}
