package syntax

import "fmt"

// Error is a grammar-level rejection.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Span locates a node in the source text.
type Span struct {
	Line   int
	Col    int
	Offset int // first byte
	End    int // one past the last byte
}

// File is the parse tree of a whole litmus test.
type File struct {
	Addresses []*AddressDecl
	Threads   []*ThreadDecl
	Commands  []*CommandDecl
}

// AddressDecl is ".space name [virtually|physically aliases other]".
type AddressDecl struct {
	Space     string
	Name      string
	AliasType string // "", "virtually" or "physically"
	Alias     string
	Span      Span
}

// ThreadDecl is "dD.bB.tT { instructions }".
type ThreadDecl struct {
	Device int
	Block  int
	Thread int
	Insts  []*InstructionNode
	Span   Span
}

// InstructionNode is one instruction as written. Qualifiers are sorted
// into their classes by vocabulary; empty means absent.
type InstructionNode struct {
	Mnemonic string
	Sem      string
	Scope    string
	AtomicOp string
	Proxy    string // only after ".proxy" on a fence
	Operands []Operand
	Return   *Operand // "== value", nil when absent
	Span     Span
}

// OperandKind tells which alternative an Operand holds.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandInteger
	OperandAddress
)

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandInteger:
		return "integer"
	case OperandAddress:
		return "address"
	default:
		return "?"
	}
}

// Operand is a register ("r1"), an integer, or a bracketed address ("[x]").
type Operand struct {
	Kind OperandKind
	Name string // register or address name
	N    int
	Span Span
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return o.Name
	case OperandInteger:
		return fmt.Sprintf("%d", o.N)
	default:
		return "[" + o.Name + "]"
	}
}

// CommandDecl is "permit|assert|check condition [name]".
type CommandDecl struct {
	Keyword string
	Cond    CondNode
	Name    string
	Span    Span
}

// CondNode is a node of a command's boolean condition.
type CondNode interface {
	isCond()
}

// CompareNode is "a == b" or "a != b".
type CompareNode struct {
	Negated bool
	A, B    Operand
}

// NotNode is "not x" or "!x".
type NotNode struct {
	X CondNode
}

// BinaryNode is "a and b" or "a or b".
type BinaryNode struct {
	Op   string // "and" or "or"
	A, B CondNode
}

func (*CompareNode) isCond() {}
func (*NotNode) isCond()     {}
func (*BinaryNode) isCond()  {}
