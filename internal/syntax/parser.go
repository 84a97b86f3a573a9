package syntax

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	semantics = map[string]bool{
		"weak": true, "relaxed": true, "acquire": true, "release": true,
		"acq_rel": true, "sc": true, "volatile": true,
	}
	scopes = map[string]bool{
		"cta": true, "gpu": true, "sys": true,
	}
	atomicOps = map[string]bool{
		"add": true, "sub": true, "exch": true, "min": true, "max": true,
	}
	proxies = map[string]bool{
		"generic": true, "surface": true, "texture": true, "constant": true, "alias": true,
	}
	commandKeywords = map[string]bool{
		"permit": true, "assert": true, "check": true,
	}
	reservedWords = map[string]bool{
		"permit": true, "assert": true, "check": true,
		"and": true, "or": true, "not": true,
	}
)

var (
	registerPattern = regexp.MustCompile(`^r[0-9]+$`)
	hierarchyLevel  = regexp.MustCompile(`^([dbt])([0-9]+)$`)
)

// Parser consumes tokens produced by Lex and builds a File.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser creates a new Parser instance
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses a whole litmus test.
func Parse(src string) (*File, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseFile()
}

// ParseFile parses every top-level declaration until EOF.
// Declarations may appear in any order.
func (p *Parser) ParseFile() (*File, error) {
	f := &File{}
	for {
		tok := p.peek()
		switch {
		case tok.Type == TokenEOF:
			return f, nil
		case tok.Type == TokenDot:
			decl, err := p.parseAddressDecl()
			if err != nil {
				return nil, err
			}
			f.Addresses = append(f.Addresses, decl)
		case tok.Type == TokenIdent && commandKeywords[tok.Value]:
			cmd, err := p.parseCommand()
			if err != nil {
				return nil, err
			}
			f.Commands = append(f.Commands, cmd)
		case tok.Type == TokenIdent && isLevel(tok.Value, 'd'):
			th, err := p.parseThread()
			if err != nil {
				return nil, err
			}
			f.Threads = append(f.Threads, th)
		default:
			return nil, p.errorf(tok, "unexpected %s %q at top level", tok.Type, tok.Value)
		}
	}
}

// parseAddressDecl parses ".space name [virtually|physically aliases other] [;]".
func (p *Parser) parseAddressDecl() (*AddressDecl, error) {
	start := p.next() // '.'
	space, err := p.expectIdent("state space")
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent("address name")
	if err != nil {
		return nil, err
	}
	decl := &AddressDecl{Space: space.Value, Name: name.Value}

	if tok := p.peek(); tok.Type == TokenIdent && (tok.Value == "virtually" || tok.Value == "physically") {
		p.next()
		decl.AliasType = tok.Value
		kw, err := p.expectIdent("'aliases'")
		if err != nil {
			return nil, err
		}
		if kw.Value != "aliases" {
			return nil, p.errorf(kw, "expected 'aliases', found %q", kw.Value)
		}
		target, err := p.expectIdent("aliased address")
		if err != nil {
			return nil, err
		}
		decl.Alias = target.Value
	}
	p.skip(TokenSemicolon)

	decl.Span = p.spanFrom(start)
	return decl, nil
}

// parseThread parses "dD.bB.tT { ... }".
func (p *Parser) parseThread() (*ThreadDecl, error) {
	start := p.peek()
	var ids [3]int
	for i, level := range []byte{'d', 'b', 't'} {
		if i > 0 {
			if _, err := p.expect(TokenDot); err != nil {
				return nil, err
			}
		}
		tok, err := p.expectIdent("thread hierarchy level")
		if err != nil {
			return nil, err
		}
		if !isLevel(tok.Value, level) {
			return nil, p.errorf(tok, "expected %c<number> in thread identifier, found %q", level, tok.Value)
		}
		n, err := strconv.Atoi(tok.Value[1:])
		if err != nil {
			return nil, p.errorf(tok, "bad %c index %q", level, tok.Value)
		}
		ids[i] = n
	}

	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	th := &ThreadDecl{Device: ids[0], Block: ids[1], Thread: ids[2]}
	for p.peek().Type != TokenRBrace {
		if p.peek().Type == TokenEOF {
			return nil, p.errorf(p.peek(), "missing '}' closing thread %s", start.Value)
		}
		if p.skip(TokenSemicolon) {
			continue
		}
		inst, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		th.Insts = append(th.Insts, inst)
	}
	p.next() // '}'

	th.Span = p.spanFrom(start)
	return th, nil
}

// parseInstruction parses "mnemonic{.qualifier} operands [== value]".
func (p *Parser) parseInstruction() (*InstructionNode, error) {
	mn, err := p.expectIdent("instruction mnemonic")
	if err != nil {
		return nil, err
	}
	inst := &InstructionNode{Mnemonic: mn.Value}

	afterProxy := false
	for p.peek().Type == TokenDot {
		p.next()
		q, err := p.expectIdent("qualifier")
		if err != nil {
			return nil, err
		}
		if afterProxy {
			if !proxies[q.Value] {
				return nil, p.errorf(q, "unknown proxy .%s", q.Value)
			}
			inst.Proxy = q.Value
			afterProxy = false
			continue
		}
		if err := p.classifyQualifier(inst, q, &afterProxy); err != nil {
			return nil, err
		}
	}
	if afterProxy {
		return nil, p.errorf(p.peek(), ".proxy must be followed by a proxy kind")
	}

	if isOperandStart(p.peek()) {
		for {
			op, err := p.parseOperand(true)
			if err != nil {
				return nil, err
			}
			inst.Operands = append(inst.Operands, op)
			if !p.skip(TokenComma) {
				break
			}
		}
	}

	if p.skip(TokenEq) {
		rv, err := p.parseOperand(false)
		if err != nil {
			return nil, err
		}
		inst.Return = &rv
	}

	inst.Span = p.spanFrom(mn)
	p.skip(TokenSemicolon)
	return inst, nil
}

func (p *Parser) classifyQualifier(inst *InstructionNode, q Token, afterProxy *bool) error {
	set := func(slot *string, class string) error {
		if *slot != "" {
			return p.errorf(q, "duplicate %s qualifier .%s (already .%s)", class, q.Value, *slot)
		}
		*slot = q.Value
		return nil
	}

	switch {
	case q.Value == "proxy":
		if inst.Proxy != "" {
			return p.errorf(q, "duplicate .proxy qualifier")
		}
		*afterProxy = true
		return nil
	case semantics[q.Value]:
		return set(&inst.Sem, "semantic")
	case scopes[q.Value]:
		return set(&inst.Scope, "scope")
	case atomicOps[q.Value]:
		return set(&inst.AtomicOp, "atomic operation")
	default:
		return p.errorf(q, "unknown qualifier .%s", q.Value)
	}
}

// parseOperand parses a register, an integer, or (when allowAddress is
// set) a bracketed address.
func (p *Parser) parseOperand(allowAddress bool) (Operand, error) {
	tok := p.next()
	switch {
	case tok.Type == TokenInt:
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return Operand{}, p.errorf(tok, "bad integer %q", tok.Value)
		}
		return Operand{Kind: OperandInteger, N: n, Span: p.spanFrom(tok)}, nil
	case tok.Type == TokenIdent && registerPattern.MatchString(tok.Value):
		return Operand{Kind: OperandRegister, Name: tok.Value, Span: p.spanFrom(tok)}, nil
	case tok.Type == TokenLBracket && allowAddress:
		name, err := p.expectIdent("address name")
		if err != nil {
			return Operand{}, err
		}
		if _, err := p.expect(TokenRBracket); err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandAddress, Name: name.Value, Span: p.spanFrom(tok)}, nil
	default:
		return Operand{}, p.errorf(tok, "expected operand, found %s %q", tok.Type, tok.Value)
	}
}

// parseCommand parses "permit|assert|check condition [name]".
func (p *Parser) parseCommand() (*CommandDecl, error) {
	kw := p.next()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	cmd := &CommandDecl{Keyword: kw.Value, Cond: cond}

	if tok := p.peek(); tok.Type == TokenIdent && !reservedWords[tok.Value] && !isLevel(tok.Value, 'd') {
		p.next()
		cmd.Name = tok.Value
	}
	p.skip(TokenSemicolon)

	cmd.Span = p.spanFrom(kw)
	return cmd, nil
}

func (p *Parser) parseOr() (CondNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.skipWord("or") || p.skip(TokenOrOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: "or", A: left, B: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (CondNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.skipWord("and") || p.skip(TokenAndAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: "and", A: left, B: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (CondNode, error) {
	if p.skipWord("not") || p.skip(TokenBang) {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotNode{X: x}, nil
	}
	if p.skip(TokenLParen) {
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return x, nil
	}

	a, err := p.parseOperand(false)
	if err != nil {
		return nil, err
	}
	op := p.next()
	if op.Type != TokenEq && op.Type != TokenNeq {
		return nil, p.errorf(op, "expected '==' or '!=' after %s, found %s %q", a, op.Type, op.Value)
	}
	b, err := p.parseOperand(false)
	if err != nil {
		return nil, err
	}
	return &CompareNode{Negated: op.Type == TokenNeq, A: a, B: b}, nil
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) prev() Token {
	if p.current == 0 {
		return p.peek()
	}
	return p.tokens[p.current-1]
}

func (p *Parser) skip(tt TokenType) bool {
	if p.peek().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *Parser) skipWord(word string) bool {
	if tok := p.peek(); tok.Type == TokenIdent && tok.Value == word {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, found %s %q", tt, tok.Type, tok.Value)
	}
	return tok, nil
}

func (p *Parser) expectIdent(what string) (Token, error) {
	tok := p.next()
	if tok.Type != TokenIdent {
		return tok, p.errorf(tok, "expected %s, found %s %q", what, tok.Type, tok.Value)
	}
	return tok, nil
}

// spanFrom covers start through the last consumed token.
func (p *Parser) spanFrom(start Token) Span {
	return Span{
		Line:   start.Line,
		Col:    start.Col,
		Offset: start.Offset,
		End:    p.prev().End(),
	}
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &Error{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func isOperandStart(tok Token) bool {
	switch tok.Type {
	case TokenInt, TokenLBracket:
		return true
	case TokenIdent:
		return registerPattern.MatchString(tok.Value)
	}
	return false
}

func isLevel(word string, level byte) bool {
	m := hierarchyLevel.FindStringSubmatch(word)
	return m != nil && m[1][0] == level
}
