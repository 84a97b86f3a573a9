package litmus

// Condition is a boolean query over register values.
type Condition interface {
	isCondition()
	String() string
}

var (
	_ Condition = Equal{}
	_ Condition = Not{}
	_ Condition = And{}
	_ Condition = Or{}
)

// Equal holds when both values are equal.
type Equal struct {
	A, B Value
}

func (Equal) isCondition() {}
func (c Equal) String() string {
	return "(" + c.A.String() + " == " + c.B.String() + ")"
}

// Not negates X.
type Not struct {
	X Condition
}

func (Not) isCondition() {}
func (c Not) String() string {
	return "(not " + c.X.String() + ")"
}

// And holds when both operands hold.
type And struct {
	A, B Condition
}

func (And) isCondition() {}
func (c And) String() string {
	return "(" + c.A.String() + " and " + c.B.String() + ")"
}

// Or holds when either operand holds.
type Or struct {
	A, B Condition
}

func (Or) isCondition() {}
func (c Or) String() string {
	return "(" + c.A.String() + " or " + c.B.String() + ")"
}

// CommandKind is the surface keyword that introduced a command.
type CommandKind int

const (
	Permit CommandKind = iota
	Assert
	Check
)

func (k CommandKind) String() string {
	switch k {
	case Permit:
		return "permit"
	case Assert:
		return "assert"
	case Check:
		return "check"
	default:
		return "?"
	}
}

// Expectation is the verdict a command's author expects.
type Expectation int

const (
	// ExpectReachable asks whether some execution satisfies the condition.
	ExpectReachable Expectation = iota
	// ExpectImpossible asserts that no execution violates the condition.
	ExpectImpossible
)

func (e Expectation) String() string {
	if e == ExpectImpossible {
		return "impossible"
	}
	return "reachable"
}

// Command is a named query paired with its expected verdict.
type Command struct {
	Name   string
	Kind   CommandKind
	Cond   Condition
	Expect Expectation
	Line   int
}

func (c *Command) String() string {
	return c.Name + ": " + c.Cond.String() + " (expect " + c.Expect.String() + ")"
}
