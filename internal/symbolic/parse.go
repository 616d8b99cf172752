package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"text/scanner"
)

// Parse reads an infix expression such as "-g/l*sin(theta) - c*omega".
//
// Supported syntax: numbers, identifiers, + - * /, ^ and ** (right
// associative, binding tighter than unary minus), parentheses and calls.
// sqrt(x), pow(x, y) and ln(x) are rewritten to powers and log; other
// built-in names evaluate normally and unknown names become opaque
// functions. The identifier pi denotes the constant.
func Parse(text string) (Expr, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(text))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.failf("%s", msg)
	}
	p.next()
	e := p.parseSum()
	if p.err == nil && p.tok != scanner.EOF {
		p.failf("unexpected %q", p.lit)
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	s   scanner.Scanner
	tok rune
	lit string
	err error
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.lit = p.s.TokenText()
	if p.tok == '*' && p.s.Peek() == '*' {
		p.s.Next()
		p.tok, p.lit = '^', "**"
	}
}

func (p *parser) failf(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s at column %d", ErrParse, fmt.Sprintf(format, args...), p.s.Position.Column)
	}
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.failf("expected %q, found %q", string(tok), p.lit)
		return
	}
	p.next()
}

func (p *parser) parseSum() Expr {
	left := p.parseProduct()
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		right := p.parseProduct()
		if op == '+' {
			left = AddOf(left, right)
		} else {
			left = SubOf(left, right)
		}
	}
	return left
}

func (p *parser) parseProduct() Expr {
	left := p.parseUnary()
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		right := p.parseUnary()
		if op == '*' {
			left = MulOf(left, right)
		} else {
			left = DivOf(left, right)
		}
	}
	return left
}

func (p *parser) parseUnary() Expr {
	switch p.tok {
	case '-':
		p.next()
		return NegOf(p.parseUnary())
	case '+':
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() Expr {
	base := p.parsePrimary()
	if p.err == nil && p.tok == '^' {
		p.next()
		return PowOf(base, p.parseUnary())
	}
	return base
}

func (p *parser) parsePrimary() Expr {
	if p.err != nil {
		return zero()
	}
	switch p.tok {
	case scanner.Int, scanner.Float:
		r, ok := new(big.Rat).SetString(p.lit)
		if !ok {
			p.failf("bad number %q", p.lit)
			return zero()
		}
		p.next()
		return &Num{val: r}

	case scanner.Ident:
		name := p.lit
		p.next()
		if p.tok == '(' {
			p.next()
			var args []Expr
			for p.err == nil && p.tok != ')' {
				args = append(args, p.parseSum())
				if p.tok != ',' {
					break
				}
				p.next()
			}
			p.expect(')')
			return p.call(name, args)
		}
		if name == "pi" {
			return Pi
		}
		return S(name)

	case '(':
		p.next()
		e := p.parseSum()
		p.expect(')')
		return e
	}
	if p.tok == scanner.EOF {
		p.failf("unexpected end of input")
	} else {
		p.failf("unexpected %q", p.lit)
	}
	return zero()
}

func (p *parser) call(name string, args []Expr) Expr {
	arity := func(n int) bool {
		if len(args) != n {
			p.failf("%s takes %d argument(s), got %d", name, n, len(args))
			return false
		}
		return true
	}
	switch {
	case name == "sqrt":
		if arity(1) {
			return SqrtOf(args[0])
		}
	case name == "pow":
		if arity(2) {
			return PowOf(args[0], args[1])
		}
	case name == "ln":
		if arity(1) {
			return LogOf(args[0])
		}
	case IsBuiltin(name):
		if arity(1) {
			return FuncOf(name, args[0])
		}
	default:
		return FuncOf(name, args...)
	}
	return zero()
}
