package litmus

import "fmt"

// Instruction is one operation of a thread.
type Instruction interface {
	isInstruction()
	// ID is the test-wide unique name assigned by the transformer.
	ID() string
	// SourceLine is the line the instruction was written on.
	SourceLine() int
	String() string
}

var (
	_ Instruction = (*Load)(nil)
	_ Instruction = (*Store)(nil)
	_ Instruction = (*Atom)(nil)
	_ Instruction = (*Fence)(nil)
	_ Instruction = (*ProxyFence)(nil)
	_ Instruction = (*AliasFence)(nil)
)

// Load reads Src into register Dst.
type Load struct {
	Name   string
	Op     string // mnemonic as written: ld, tld, suld, ldc
	Sem    Semantic
	Scope  Scope
	Proxy  Proxy
	Dst    string
	Src    string
	Return Value
	Line   int
}

func (*Load) isInstruction() {}
func (i *Load) ID() string      { return i.Name }
func (i *Load) SourceLine() int { return i.Line }
func (i *Load) String() string {
	return fmt.Sprintf("%-24s: %s%s%s%s %s, [%s]%s",
		i.Name, i.Op, dotted(i.Sem.String()), dotted(i.Scope.String()), dotted(i.Proxy.String()),
		i.Dst, i.Src, expected(i.Return))
}

// Store writes Value to Dst.
type Store struct {
	Name  string
	Op    string // st, sust
	Sem   Semantic
	Scope Scope
	Proxy Proxy
	Dst   string
	Value Value
	Line  int
}

func (*Store) isInstruction() {}
func (i *Store) ID() string      { return i.Name }
func (i *Store) SourceLine() int { return i.Line }
func (i *Store) String() string {
	return fmt.Sprintf("%-24s: %s%s%s%s [%s], %s",
		i.Name, i.Op, dotted(i.Sem.String()), dotted(i.Scope.String()), dotted(i.Proxy.String()),
		i.Dst, i.Value)
}

// Atom is a read-modify-write of Src. A reduction is an Atom with no
// destination register and NoValue as its return value.
type Atom struct {
	Name     string
	Op       string // atom, suatom, red, sured
	AtomicOp AtomicOp
	Sem      Semantic
	Scope    Scope
	Proxy    Proxy
	Dst      string
	Src      string
	Value    Value
	Return   Value
	Line     int
}

func (*Atom) isInstruction() {}
func (i *Atom) ID() string      { return i.Name }
func (i *Atom) SourceLine() int { return i.Line }
func (i *Atom) String() string {
	dst := ""
	if i.Dst != "" {
		dst = i.Dst + ", "
	}
	return fmt.Sprintf("%-24s: %s.%s%s%s%s %s[%s], %s%s",
		i.Name, i.Op, i.AtomicOp, dotted(i.Sem.String()), dotted(i.Scope.String()), dotted(i.Proxy.String()),
		dst, i.Src, i.Value, expected(i.Return))
}

// IsReduction reports whether the atomic discards the value it read.
func (i *Atom) IsReduction() bool {
	return i.Dst == ""
}

// Fence orders surrounding memory operations.
type Fence struct {
	Name  string
	Sem   Semantic
	Scope Scope
	Line  int
}

func (*Fence) isInstruction() {}
func (i *Fence) ID() string      { return i.Name }
func (i *Fence) SourceLine() int { return i.Line }
func (i *Fence) String() string {
	return fmt.Sprintf("%-24s: fence%s%s", i.Name, dotted(i.Sem.String()), dotted(i.Scope.String()))
}

// ProxyFence drains outstanding accesses made through Proxy.
type ProxyFence struct {
	Name  string
	Proxy Proxy
	Line  int
}

func (*ProxyFence) isInstruction() {}
func (i *ProxyFence) ID() string      { return i.Name }
func (i *ProxyFence) SourceLine() int { return i.Line }
func (i *ProxyFence) String() string {
	return fmt.Sprintf("%-24s: fence.proxy.%s", i.Name, i.Proxy)
}

// AliasFence orders accesses made through distinct virtual aliases.
type AliasFence struct {
	Name string
	Line int
}

func (*AliasFence) isInstruction() {}
func (i *AliasFence) ID() string      { return i.Name }
func (i *AliasFence) SourceLine() int { return i.Line }
func (i *AliasFence) String() string {
	return fmt.Sprintf("%-24s: fence.proxy.alias", i.Name)
}

func expected(v Value) string {
	if IsNoValue(v) {
		return ""
	}
	return " == " + v.String()
}
