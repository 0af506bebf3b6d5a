package eventfilter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Expr is a node of a parsed query. Evaluation is against an event's field map.
type Expr interface {
	Eval(fields map[string]any) (bool, error)
}

// Operand is a value source inside a comparison.
type Operand interface {
	Value(fields map[string]any) any
}

// Field references an event field by name; dotted names walk nested objects.
// Missing fields resolve to nil.
type Field struct{ Name string }

func (f Field) Value(fields map[string]any) any {
	if v, ok := fields[f.Name]; ok {
		return v
	}
	var cur any = fields
	for _, part := range strings.Split(f.Name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Literal is a constant number, string or boolean.
type Literal struct{ V any }

func (l Literal) Value(map[string]any) any { return l.V }

// And is a logical conjunction.
type And struct{ Left, Right Expr }

func (e And) Eval(fields map[string]any) (bool, error) {
	l, err := e.Left.Eval(fields)
	if err != nil || !l {
		return false, err
	}
	return e.Right.Eval(fields)
}

// Or is a logical disjunction.
type Or struct{ Left, Right Expr }

func (e Or) Eval(fields map[string]any) (bool, error) {
	l, err := e.Left.Eval(fields)
	if err != nil || l {
		return l, err
	}
	return e.Right.Eval(fields)
}

// Not negates an expression.
type Not struct{ Inner Expr }

func (e Not) Eval(fields map[string]any) (bool, error) {
	v, err := e.Inner.Eval(fields)
	return !v, err
}

// Truthy evaluates a bare operand as a condition.
type Truthy struct{ Operand Operand }

func (e Truthy) Eval(fields map[string]any) (bool, error) {
	switch v := e.Operand.Value(fields).(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		return v != "", nil
	case []any:
		return len(v) > 0, nil
	default:
		return true, nil
	}
}

// Compare applies a comparison operator (==, !=, <, <=, >, >=).
type Compare struct {
	Op          string
	Left, Right Operand
}

func (e Compare) Eval(fields map[string]any) (bool, error) {
	l := e.Left.Value(fields)
	r := e.Right.Value(fields)

	switch e.Op {
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	}

	if lf, ok := l.(float64); ok {
		rf, ok := r.(float64)
		if !ok {
			return false, fmt.Errorf("cannot compare number with %T", r)
		}
		return order(e.Op, compareFloat(lf, rf)), nil
	}
	if ls, ok := l.(string); ok {
		rs, ok := r.(string)
		if !ok {
			return false, fmt.Errorf("cannot compare string with %T", r)
		}
		return order(e.Op, strings.Compare(ls, rs)), nil
	}
	if l == nil || r == nil {
		return false, nil
	}
	return false, fmt.Errorf("operator %s not supported for %T", e.Op, l)
}

// In tests substring containment (string right side) or list membership.
type In struct {
	Left, Right Operand
	Negate      bool
}

func (e In) Eval(fields map[string]any) (bool, error) {
	l := e.Left.Value(fields)
	var found bool
	switch r := e.Right.Value(fields).(type) {
	case string:
		ls, ok := l.(string)
		if !ok {
			return false, fmt.Errorf("'in' on a string needs a string left side, got %T", l)
		}
		found = strings.Contains(r, ls)
	case []any:
		for _, item := range r {
			if equal(l, item) {
				found = true
				break
			}
		}
	case nil:
		found = false
	default:
		return false, fmt.Errorf("'in' not supported for %T", r)
	}
	if e.Negate {
		return !found, nil
	}
	return found, nil
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func order(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// Parse compiles a query such as
//
//	ConfirmedRegistrationsCount > 5 and "Diamond" in Name
//
// into an expression tree. Identifiers name event fields; literals are
// numbers, quoted strings, true and false.
func Parse(query string) (Expr, error) {
	toks, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	return expr, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], byte(c))
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at position %d", i)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end], i})
			i += end + 2
		case strings.ContainsRune("=!<>", c):
			if i+1 < len(s) && s[i+1] == '=' {
				toks = append(toks, token{tokOp, s[i : i+2], i})
				i += 2
				continue
			}
			if c == '<' || c == '>' {
				toks = append(toks, token{tokOp, string(c), i})
				i++
				continue
			}
			return nil, fmt.Errorf("unexpected %q at position %d", string(c), i)
		case unicode.IsDigit(c) || (c == '-' && i+1 < len(s) && unicode.IsDigit(rune(s[i+1]))):
			start := i
			i++
			for i < len(s) && (unicode.IsDigit(rune(s[i])) || s[i] == '.') {
				i++
			}
			toks = append(toks, token{tokNumber, s[start:i], start})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(s) && (unicode.IsLetter(rune(s[i])) || unicode.IsDigit(rune(s[i])) || s[i] == '_' || s[i] == '.') {
				i++
			}
			toks = append(toks, token{tokIdent, s[start:i], start})
		default:
			return nil, fmt.Errorf("unexpected %q at position %d", string(c), i)
		}
	}
	return append(toks, token{tokEOF, "", len(s)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.keyword("not") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("expected ) at position %d", p.peek().pos)
		}
		p.next()
		return expr, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.peek().kind == tokOp {
		op := p.next().text
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return Compare{Op: op, Left: left, Right: right}, nil
	}
	if p.keyword("in") {
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return In{Left: left, Right: right}, nil
	}
	if p.keyword("not") && p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokIdent && strings.EqualFold(p.toks[p.pos+1].text, "in") {
		p.next()
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return In{Left: left, Right: right, Negate: true}, nil
	}
	return Truthy{Operand: left}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		return Literal{V: v}, nil
	case tokString:
		return Literal{V: t.text}, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return Literal{V: true}, nil
		case "false":
			return Literal{V: false}, nil
		case "and", "or", "not", "in":
			return nil, fmt.Errorf("unexpected keyword %q at position %d", t.text, t.pos)
		}
		return Field{Name: t.text}, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of query")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
