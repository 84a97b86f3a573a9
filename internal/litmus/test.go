package litmus

import (
	"fmt"
	"strings"
)

// Address is a symbolic memory location.
type Address struct {
	Name   string
	Space  string // state space as written, e.g. "global"
	Alias  AliasKind
	Target string // aliased address; empty when Alias is AliasNone
	Line   int
}

func (a *Address) String() string {
	s := "." + a.Space + " " + a.Name
	if a.Alias != AliasNone {
		s += " " + a.Alias.String() + " aliases " + a.Target
	}
	return s
}

// ThreadID is the position of a thread in the device/block/thread
// hierarchy.
type ThreadID struct {
	Device int
	Block  int
	Thread int
}

// DeviceName returns the device name, e.g. "d0".
func (t ThreadID) DeviceName() string {
	return fmt.Sprintf("d%d", t.Device)
}

// BlockName returns the block name, e.g. "d0_b1".
func (t ThreadID) BlockName() string {
	return fmt.Sprintf("%s_b%d", t.DeviceName(), t.Block)
}

// ThreadName returns the thread name, e.g. "d0_b1_t2".
func (t ThreadID) ThreadName() string {
	return fmt.Sprintf("%s_t%d", t.BlockName(), t.Thread)
}

func (t ThreadID) String() string {
	return t.ThreadName()
}

// Thread is a program-ordered list of instructions run by one ThreadID.
// A test may contain several Thread fragments with the same ID; they
// continue one another in source order.
type Thread struct {
	ID    ThreadID
	Insts []Instruction
	Line  int
}

func (t *Thread) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Thread %s\n", t.ID)
	for _, inst := range t.Insts {
		b.WriteString(inst.String())
		b.WriteString(";\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Test is the root of the tree.
type Test struct {
	Addresses []*Address
	Threads   []*Thread
	Commands  []*Command
}

// Address returns the address declared as name, or nil.
func (t *Test) Address(name string) *Address {
	for _, a := range t.Addresses {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Command returns the command named name, or nil.
func (t *Test) Command(name string) *Command {
	for _, c := range t.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Instructions returns every instruction in source order.
func (t *Test) Instructions() []Instruction {
	var out []Instruction
	for _, th := range t.Threads {
		out = append(out, th.Insts...)
	}
	return out
}

func (t *Test) String() string {
	var b strings.Builder

	b.WriteString("Addresses:\n")
	for _, a := range t.Addresses {
		b.WriteString(a.String())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("Instructions:\n")
	for _, th := range t.Threads {
		b.WriteString(th.String())
	}

	b.WriteString("Commands:\n")
	for _, c := range t.Commands {
		b.WriteString(c.String())
		b.WriteString("\n")
	}

	return b.String()
}
