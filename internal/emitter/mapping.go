package emitter

import (
	"fmt"

	"github.com/gnoswap-labs/litmus/internal/litmus"
)

// MappingError reports a qualifier that reached the emitter without an
// Alloy counterpart. The transformer rejects such input, so seeing one
// means the two packages disagree.
type MappingError struct {
	Kind  string
	Value string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("no Alloy mapping for %s %s", e.Kind, e.Value)
}

func unmapped(kind string, v fmt.Stringer) error {
	return &MappingError{Kind: kind, Value: v.String()}
}

// scopeSet maps a scope to the Alloy set containing it. Thread-local
// operations are scoped to their thread.
func scopeSet(s litmus.Scope) (string, error) {
	switch s {
	case litmus.ScopeNone:
		return "Thread", nil
	case litmus.CTA:
		return "Block", nil
	case litmus.GPU:
		return "Device", nil
	case litmus.Sys:
		return "System", nil
	default:
		return "", unmapped("scope", s)
	}
}

func proxySig(p litmus.Proxy) (string, error) {
	switch p {
	case litmus.Generic:
		return "GenericProxy", nil
	case litmus.Surface:
		return "SurfaceProxy", nil
	case litmus.Texture:
		return "TextureProxy", nil
	case litmus.Constant:
		return "ConstantProxy", nil
	default:
		return "", unmapped("proxy", p)
	}
}

func readKind(s litmus.Semantic) (string, error) {
	switch s {
	case litmus.Weak, litmus.Relaxed:
		return "Read", nil
	case litmus.Acquire:
		return "ReadAcquire", nil
	default:
		return "", unmapped("load semantic", s)
	}
}

func writeKind(s litmus.Semantic) (string, error) {
	switch s {
	case litmus.Weak, litmus.Relaxed:
		return "Write", nil
	case litmus.Release:
		return "WriteRelease", nil
	default:
		return "", unmapped("store semantic", s)
	}
}

func fenceKind(s litmus.Semantic) (string, error) {
	switch s {
	case litmus.AcqRel:
		return "FenceAcqRel", nil
	case litmus.SC:
		return "FenceSC", nil
	default:
		return "", unmapped("fence semantic", s)
	}
}

// splitAtomic returns the semantics of the read and the write an atomic
// is decomposed into.
func splitAtomic(s litmus.Semantic) (read, write litmus.Semantic, err error) {
	switch s {
	case litmus.Relaxed:
		return litmus.Relaxed, litmus.Relaxed, nil
	case litmus.Acquire:
		return litmus.Acquire, litmus.Relaxed, nil
	case litmus.Release:
		return litmus.Relaxed, litmus.Release, nil
	case litmus.AcqRel:
		return litmus.Acquire, litmus.Release, nil
	default:
		return 0, 0, unmapped("atomic semantic", s)
	}
}

// combine renders the value an atomic writes, given the value a it read
// and its operand b.
func combine(op litmus.AtomicOp, a, b string) (string, error) {
	switch op {
	case litmus.OpAdd:
		return fmt.Sprintf("fun/add[%s, %s]", a, b), nil
	case litmus.OpSub:
		return fmt.Sprintf("fun/sub[%s, %s]", a, b), nil
	case litmus.OpExch:
		return b, nil
	case litmus.OpMin:
		return fmt.Sprintf("(%s < %s => %s else %s)", a, b, a, b), nil
	case litmus.OpMax:
		return fmt.Sprintf("(%s > %s => %s else %s)", a, b, a, b), nil
	default:
		return "", unmapped("atomic operation", op)
	}
}
