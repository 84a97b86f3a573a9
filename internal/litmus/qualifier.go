package litmus

// Semantic is the memory-ordering qualifier of an operation.
// The surface keyword volatile never reaches the tree: the transformer
// rewrites it to Relaxed at system scope.
type Semantic int

const (
	Weak Semantic = iota
	Relaxed
	Acquire
	Release
	AcqRel
	SC

	numSemantics
)

func (s Semantic) String() string {
	switch s {
	case Weak:
		return "weak"
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	case SC:
		return "sc"
	default:
		return "?"
	}
}

// Semantics lists every Semantic value in declaration order.
func Semantics() []Semantic {
	out := make([]Semantic, 0, numSemantics)
	for s := Weak; s < numSemantics; s++ {
		out = append(out, s)
	}
	return out
}

// Scope is the granularity over which an operation's ordering applies.
// ScopeNone means the operation is thread-local.
type Scope int

const (
	ScopeNone Scope = iota
	CTA
	GPU
	Sys

	numScopes
)

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return ""
	case CTA:
		return "cta"
	case GPU:
		return "gpu"
	case Sys:
		return "sys"
	default:
		return "?"
	}
}

// Scopes lists every Scope value in declaration order.
func Scopes() []Scope {
	out := make([]Scope, 0, numScopes)
	for s := ScopeNone; s < numScopes; s++ {
		out = append(out, s)
	}
	return out
}

// Proxy classifies the path a memory access takes.
type Proxy int

const (
	Generic Proxy = iota
	Surface
	Texture
	Constant

	numProxies
)

func (p Proxy) String() string {
	switch p {
	case Generic:
		return "generic"
	case Surface:
		return "surface"
	case Texture:
		return "texture"
	case Constant:
		return "constant"
	default:
		return "?"
	}
}

// Proxies lists every Proxy value in declaration order.
func Proxies() []Proxy {
	out := make([]Proxy, 0, numProxies)
	for p := Generic; p < numProxies; p++ {
		out = append(out, p)
	}
	return out
}

// AtomicOp is the combinator applied by a read-modify-write.
type AtomicOp int

const (
	OpAdd AtomicOp = iota
	OpSub
	OpExch
	OpMin
	OpMax

	numAtomicOps
)

func (op AtomicOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpExch:
		return "exch"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	default:
		return "?"
	}
}

// AtomicOps lists every AtomicOp value in declaration order.
func AtomicOps() []AtomicOp {
	out := make([]AtomicOp, 0, numAtomicOps)
	for op := OpAdd; op < numAtomicOps; op++ {
		out = append(out, op)
	}
	return out
}

// AliasKind tells how an address relates to the one it aliases.
//
// AliasVirtual makes two names denote the very same location.
// AliasPhysical keeps two distinct virtual locations that share
// physical backing. The two are not interchangeable.
type AliasKind int

const (
	AliasNone AliasKind = iota
	AliasVirtual
	AliasPhysical
)

func (k AliasKind) String() string {
	switch k {
	case AliasNone:
		return ""
	case AliasVirtual:
		return "virtually"
	case AliasPhysical:
		return "physically"
	default:
		return "?"
	}
}

// dotted renders a qualifier as ".q", or "" when q is empty.
func dotted(q string) string {
	if q == "" {
		return ""
	}
	return "." + q
}
