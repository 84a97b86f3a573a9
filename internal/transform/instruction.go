package transform

import (
	"github.com/gnoswap-labs/litmus/internal/litmus"
	"github.com/gnoswap-labs/litmus/internal/syntax"
)

// proxyOf classifies a memory mnemonic. Fences are not listed.
var proxyOf = map[string]litmus.Proxy{
	"ld":     litmus.Generic,
	"st":     litmus.Generic,
	"atom":   litmus.Generic,
	"red":    litmus.Generic,
	"tld":    litmus.Texture,
	"suld":   litmus.Surface,
	"sust":   litmus.Surface,
	"suatom": litmus.Surface,
	"sured":  litmus.Surface,
	"ldc":    litmus.Constant,
}

var semanticOf = map[string]litmus.Semantic{
	"weak":    litmus.Weak,
	"relaxed": litmus.Relaxed,
	"acquire": litmus.Acquire,
	"release": litmus.Release,
	"acq_rel": litmus.AcqRel,
	"sc":      litmus.SC,
}

var scopeOf = map[string]litmus.Scope{
	"":    litmus.ScopeNone,
	"cta": litmus.CTA,
	"gpu": litmus.GPU,
	"sys": litmus.Sys,
}

var atomicOpOf = map[string]litmus.AtomicOp{
	"add":  litmus.OpAdd,
	"sub":  litmus.OpSub,
	"exch": litmus.OpExch,
	"min":  litmus.OpMin,
	"max":  litmus.OpMax,
}

var proxyName = map[string]litmus.Proxy{
	"generic":  litmus.Generic,
	"surface":  litmus.Surface,
	"texture":  litmus.Texture,
	"constant": litmus.Constant,
}

func (t *Transformer) instruction(n *syntax.InstructionNode) (litmus.Instruction, error) {
	switch n.Mnemonic {
	case "ld", "tld", "suld", "ldc":
		return t.load(n)
	case "st", "sust":
		return t.store(n)
	case "atom", "suatom", "red", "sured":
		return t.atom(n)
	case "fence":
		return t.fence(n)
	default:
		return nil, t.errorf(n.Span, "unknown operation %s", n.Mnemonic)
	}
}

// qualifiers applies the access rules shared by loads and stores: an
// absent semantic is weak, an absent scope is thread-local, volatile is
// relaxed at system scope, and neither weak nor volatile may carry an
// explicit scope.
func (t *Transformer) qualifiers(n *syntax.InstructionNode, allowed ...litmus.Semantic) (litmus.Semantic, litmus.Scope, error) {
	switch n.Sem {
	case "", "weak":
		if n.Scope != "" {
			return 0, 0, t.errorf(n.Span, "weak operations cannot have a scope")
		}
		return litmus.Weak, litmus.ScopeNone, nil
	case "volatile":
		if n.Scope != "" {
			return 0, 0, t.errorf(n.Span, "volatile operations cannot have a scope")
		}
		return litmus.Relaxed, litmus.Sys, nil
	}

	sem, err := t.semantic(n, litmus.Weak, allowed...)
	if err != nil {
		return 0, 0, err
	}
	return sem, scopeOf[n.Scope], nil
}

// semantic resolves n.Sem, substituting def when absent, and rejects
// anything outside allowed.
func (t *Transformer) semantic(n *syntax.InstructionNode, def litmus.Semantic, allowed ...litmus.Semantic) (litmus.Semantic, error) {
	if n.Sem == "volatile" {
		return 0, t.errorf(n.Span, "illegal modifier .volatile")
	}
	sem := def
	if n.Sem != "" {
		s, ok := semanticOf[n.Sem]
		if !ok {
			return 0, t.errorf(n.Span, "unknown semantic .%s", n.Sem)
		}
		sem = s
	}
	for _, a := range allowed {
		if a == sem {
			return sem, nil
		}
	}
	return 0, t.errorf(n.Span, "illegal modifier .%s on %s", sem, n.Mnemonic)
}

func (t *Transformer) load(n *syntax.InstructionNode) (litmus.Instruction, error) {
	if err := t.noExtras(n); err != nil {
		return nil, err
	}
	sem, scope, err := t.qualifiers(n, litmus.Relaxed, litmus.Acquire)
	if err != nil {
		return nil, err
	}
	if err := t.operands(n, syntax.OperandRegister, syntax.OperandAddress); err != nil {
		return nil, err
	}
	dst, err := t.bind(n.Operands[0])
	if err != nil {
		return nil, err
	}
	src, err := t.addressRef(n.Operands[1])
	if err != nil {
		return nil, err
	}
	ret, err := t.returnValue(n)
	if err != nil {
		return nil, err
	}

	return &litmus.Load{
		Name:   t.newID(),
		Op:     n.Mnemonic,
		Sem:    sem,
		Scope:  scope,
		Proxy:  proxyOf[n.Mnemonic],
		Dst:    dst,
		Src:    src,
		Return: ret,
		Line:   n.Span.Line,
	}, nil
}

func (t *Transformer) store(n *syntax.InstructionNode) (litmus.Instruction, error) {
	if err := t.noExtras(n); err != nil {
		return nil, err
	}
	sem, scope, err := t.qualifiers(n, litmus.Relaxed, litmus.Release)
	if err != nil {
		return nil, err
	}
	if err := t.operands(n, syntax.OperandAddress, operandValue); err != nil {
		return nil, err
	}
	if n.Return != nil {
		return nil, t.errorf(n.Span, "%s does not return a value", n.Mnemonic)
	}
	dst, err := t.addressRef(n.Operands[0])
	if err != nil {
		return nil, err
	}
	v, err := t.value(n.Operands[1])
	if err != nil {
		return nil, err
	}

	return &litmus.Store{
		Name:  t.newID(),
		Op:    n.Mnemonic,
		Sem:   sem,
		Scope: scope,
		Proxy: proxyOf[n.Mnemonic],
		Dst:   dst,
		Value: v,
		Line:  n.Span.Line,
	}, nil
}

func (t *Transformer) atom(n *syntax.InstructionNode) (litmus.Instruction, error) {
	if n.Proxy != "" {
		return nil, t.errorf(n.Span, "unexpected .proxy on %s", n.Mnemonic)
	}
	if n.AtomicOp == "" {
		return nil, t.errorf(n.Span, "%s requires an atomic operation", n.Mnemonic)
	}
	sem, err := t.semantic(n, litmus.Relaxed, litmus.Relaxed, litmus.Acquire, litmus.Release, litmus.AcqRel)
	if err != nil {
		return nil, err
	}

	inst := &litmus.Atom{
		Op:       n.Mnemonic,
		AtomicOp: atomicOpOf[n.AtomicOp],
		Sem:      sem,
		Scope:    scopeOf[n.Scope],
		Proxy:    proxyOf[n.Mnemonic],
		Return:   litmus.NoValue{},
		Line:     n.Span.Line,
	}

	var addr, val syntax.Operand
	if n.Mnemonic == "red" || n.Mnemonic == "sured" {
		if err := t.operands(n, syntax.OperandAddress, operandValue); err != nil {
			return nil, err
		}
		if n.Return != nil {
			return nil, t.errorf(n.Span, "%s does not return a value", n.Mnemonic)
		}
		addr, val = n.Operands[0], n.Operands[1]
	} else {
		if err := t.operands(n, syntax.OperandRegister, syntax.OperandAddress, operandValue); err != nil {
			return nil, err
		}
		dst, err := t.bind(n.Operands[0])
		if err != nil {
			return nil, err
		}
		inst.Dst = dst
		addr, val = n.Operands[1], n.Operands[2]
		if inst.Return, err = t.returnValue(n); err != nil {
			return nil, err
		}
	}

	if inst.Src, err = t.addressRef(addr); err != nil {
		return nil, err
	}
	if inst.Value, err = t.value(val); err != nil {
		return nil, err
	}
	inst.Name = t.newID()
	return inst, nil
}

func (t *Transformer) fence(n *syntax.InstructionNode) (litmus.Instruction, error) {
	if n.AtomicOp != "" {
		return nil, t.errorf(n.Span, "unexpected .%s on fence", n.AtomicOp)
	}
	if len(n.Operands) != 0 || n.Return != nil {
		return nil, t.errorf(n.Span, "fence takes no operands")
	}

	if n.Proxy != "" {
		if n.Sem != "" || n.Scope != "" {
			return nil, t.errorf(n.Span, "fence.proxy takes no semantic or scope")
		}
		if n.Proxy == "alias" {
			return &litmus.AliasFence{Name: t.newID(), Line: n.Span.Line}, nil
		}
		p, ok := proxyName[n.Proxy]
		if !ok {
			return nil, t.errorf(n.Span, "unknown proxy .%s", n.Proxy)
		}
		return &litmus.ProxyFence{Name: t.newID(), Proxy: p, Line: n.Span.Line}, nil
	}

	sem, err := t.semantic(n, litmus.AcqRel, litmus.AcqRel, litmus.SC)
	if err != nil {
		return nil, err
	}
	return &litmus.Fence{
		Name:  t.newID(),
		Sem:   sem,
		Scope: scopeOf[n.Scope],
		Line:  n.Span.Line,
	}, nil
}

func (t *Transformer) noExtras(n *syntax.InstructionNode) error {
	if n.AtomicOp != "" {
		return t.errorf(n.Span, "unexpected .%s on %s", n.AtomicOp, n.Mnemonic)
	}
	if n.Proxy != "" {
		return t.errorf(n.Span, "unexpected .proxy on %s", n.Mnemonic)
	}
	return nil
}

// operandValue accepts a register or an integer.
const operandValue syntax.OperandKind = -1

func (t *Transformer) operands(n *syntax.InstructionNode, kinds ...syntax.OperandKind) error {
	if len(n.Operands) != len(kinds) {
		return t.errorf(n.Span, "%s expects %d operands, found %d", n.Mnemonic, len(kinds), len(n.Operands))
	}
	for i, k := range kinds {
		got := n.Operands[i].Kind
		if k == operandValue && got != syntax.OperandAddress {
			continue
		}
		if got != k {
			want := k.String()
			if k == operandValue {
				want = "register or integer"
			}
			return t.errorf(n.Operands[i].Span, "operand %d of %s must be a %s", i+1, n.Mnemonic, want)
		}
	}
	return nil
}

func (t *Transformer) bind(op syntax.Operand) (string, error) {
	if prev, ok := t.registers[op.Name]; ok {
		return "", t.errorf(op.Span, "register %s already loaded on line %d", op.Name, prev.line)
	}
	t.registers[op.Name] = binding{line: op.Span.Line}
	return op.Name, nil
}

func (t *Transformer) addressRef(op syntax.Operand) (string, error) {
	if t.test.Address(op.Name) == nil {
		return "", t.errorf(op.Span, "undeclared address %s", op.Name)
	}
	return op.Name, nil
}

func (t *Transformer) returnValue(n *syntax.InstructionNode) (litmus.Value, error) {
	if n.Return == nil {
		return litmus.NoValue{}, nil
	}
	if n.Return.Kind != syntax.OperandInteger {
		return nil, t.errorf(n.Return.Span, "expected return value must be an integer")
	}
	return t.value(*n.Return)
}
