package lang

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Parse builds a syntax tree from tokens produced by [Tokenize]. Error
// positions are reported as byte offsets; use [Compile] for line and column
// information.
func Parse(tokens []Token) (*Program, error) {
	return parse("", tokens)
}

func parse(src string, tokens []Token) (*Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(slices.Clone(tokens), Token{Kind: TokenEOF, Offset: len(src)})
	}

	p := &parser{src: src, tokens: tokens}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &Program{Body: body}, nil
}

type parser struct {
	src    string
	tokens []Token
	pos    int
	loops  int // enclosing for bodies within the current macro or caller
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}

	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Kind != TokenEOF {
		p.pos++
	}

	return t
}

func (p *parser) at(kinds ...TokenKind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return t, p.unexpected(t, strconv.Quote(kind.String()))
	}

	return p.next(), nil
}

func (p *parser) position(offset int) Position {
	if p.src == "" {
		return Position{Offset: offset}
	}

	return positionAt(p.src, offset)
}

func (p *parser) unexpected(t Token, expected string) error {
	return ErrSyntax.At(p.position(t.Offset)).Wrap(
		ErrUnexpectedToken.
			With(
				slog.String("expected", expected),
				slog.String("actual", t.Kind.String()),
			).
			Detail("expected " + expected + ", found " + describe(t)),
	)
}

func (p *parser) fail(kind *Error, t Token, detail string) error {
	return ErrSyntax.At(p.position(t.Offset)).Wrap(kind.Detail(detail))
}

func describe(t Token) string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return "identifier " + strconv.Quote(t.Text)
	case TokenString:
		return "string " + strconv.Quote(t.Text)
	case TokenInteger, TokenFloat:
		return "number " + t.Text
	case TokenText:
		return "text"
	}

	return strconv.Quote(t.Kind.String())
}

func describeKinds(kinds []TokenKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = strconv.Quote(k.String())
	}

	return strings.Join(names, " or ")
}

// parseBlock parses statements until a statement tag beginning with one of
// ends, which is left unconsumed. With no ends it parses to end of input.
func (p *parser) parseBlock(ends ...TokenKind) ([]Stmt, error) {
	var body []Stmt

	for {
		t := p.peek()

		switch t.Kind {
		case TokenEOF:
			if len(ends) > 0 {
				return nil, p.unexpected(t, describeKinds(ends))
			}

			return coalesce(body), nil

		case TokenText:
			p.next()
			body = append(body, &Text{Value: t.Text, base: base{t.Offset}})

		case TokenComment:
			p.next()
			body = append(body, &Comment{Value: t.Text, base: base{t.Offset}})

		case TokenOpenExpression:
			p.next()

			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(TokenCloseExpression); err != nil {
				return nil, err
			}

			body = append(body, &Output{Expr: e, base: base{t.Offset}})

		case TokenOpenStatement:
			if slices.Contains(ends, p.peekAt(1).Kind) {
				return coalesce(body), nil
			}

			p.next()

			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}

			body = append(body, s)

		default:
			return nil, p.unexpected(t, "text or tag")
		}
	}
}

// coalesce merges adjacent text nodes and drops empty ones.
func coalesce(body []Stmt) []Stmt {
	out := body[:0]

	for _, s := range body {
		t, ok := s.(*Text)
		if !ok {
			out = append(out, s)

			continue
		}

		if t.Value == "" {
			continue
		}

		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*Text); ok {
				out[n-1] = &Text{Value: prev.Value + t.Value, base: prev.base}

				continue
			}
		}

		out = append(out, t)
	}

	return out
}

// closeTag consumes "{% kind %}".
func (p *parser) closeTag(kind TokenKind) error {
	if _, err := p.expect(TokenOpenStatement); err != nil {
		return err
	}

	if _, err := p.expect(kind); err != nil {
		return err
	}

	_, err := p.expect(TokenCloseStatement)

	return err
}

func (p *parser) parseStatement() (Stmt, error) {
	t := p.peek()

	switch t.Kind {
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenSet:
		return p.parseSet()
	case TokenMacro:
		return p.parseMacro()
	case TokenCall:
		return p.parseCallBlock()
	case TokenFilter:
		return p.parseFilterBlock()
	case TokenBreak, TokenContinue:
		p.next()

		if p.loops == 0 {
			return nil, p.fail(ErrLoopControl, t, "'"+t.Text+"' outside of a for loop")
		}

		if _, err := p.expect(TokenCloseStatement); err != nil {
			return nil, err
		}

		if t.Kind == TokenBreak {
			return &Break{base{t.Offset}}, nil
		}

		return &Continue{base{t.Offset}}, nil
	}

	return nil, p.unexpected(t, "statement keyword")
}

// parseIf parses from an "if" or "elif" keyword through the matching endif.
func (p *parser) parseIf() (Stmt, error) {
	t := p.next()

	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	body, err := p.parseBlock(TokenElif, TokenElse, TokenEndIf)
	if err != nil {
		return nil, err
	}

	node := &If{Test: test, Body: body, base: base{t.Offset}}

	p.next() // {%

	switch p.peek().Kind {
	case TokenElif:
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}

		node.Else = []Stmt{nested}

		return node, nil

	case TokenElse:
		p.next()

		if _, err := p.expect(TokenCloseStatement); err != nil {
			return nil, err
		}

		if node.Else, err = p.parseBlock(TokenEndIf); err != nil {
			return nil, err
		}

		return node, p.closeTag(TokenEndIf)
	}

	p.next() // endif

	_, err = p.expect(TokenCloseStatement)

	return node, err
}

func (p *parser) parseFor() (Stmt, error) {
	t := p.next()

	target, err := p.parseLoopTarget()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}

	iterable, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	node := &For{Target: target, Iterable: iterable, base: base{t.Offset}}

	if p.accept(TokenIf) {
		if node.Filter, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	p.loops++
	node.Body, err = p.parseBlock(TokenElse, TokenEndFor)
	p.loops--

	if err != nil {
		return nil, err
	}

	p.next() // {%

	if p.accept(TokenElse) {
		if _, err := p.expect(TokenCloseStatement); err != nil {
			return nil, err
		}

		if node.Else, err = p.parseBlock(TokenEndFor); err != nil {
			return nil, err
		}

		return node, p.closeTag(TokenEndFor)
	}

	p.next() // endfor

	_, err = p.expect(TokenCloseStatement)

	return node, err
}

// parseLoopTarget parses "x", "x, y" or "(x, y)".
func (p *parser) parseLoopTarget() (Expr, error) {
	start := p.peek()
	paren := p.accept(TokenOpenParen)

	var items []Expr

	for {
		t, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}

		items = append(items, &Identifier{Name: t.Text, base: base{t.Offset}})

		if !p.accept(TokenComma) {
			break
		}
	}

	if paren {
		if _, err := p.expect(TokenCloseParen); err != nil {
			return nil, err
		}
	}

	if len(items) == 1 && !paren {
		return items[0], nil
	}

	return &TupleLiteral{Items: items, base: base{start.Offset}}, nil
}

func (p *parser) parseSet() (Stmt, error) {
	t := p.next()

	target, err := p.parseSetTarget()
	if err != nil {
		return nil, err
	}

	node := &Set{Target: target, base: base{t.Offset}}

	if p.accept(TokenAssign) {
		if node.Value, err = p.parseExpressionList(); err != nil {
			return nil, err
		}

		_, err = p.expect(TokenCloseStatement)

		return node, err
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	if node.Body, err = p.parseBlock(TokenEndSet); err != nil {
		return nil, err
	}

	return node, p.closeTag(TokenEndSet)
}

// parseSetTarget parses an identifier, member expression, or comma list of
// identifiers.
func (p *parser) parseSetTarget() (Expr, error) {
	start := p.peek()

	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	if !p.at(TokenComma) {
		if !validTarget(first, true) {
			return nil, p.fail(ErrInvalidTarget, start, "cannot assign to expression")
		}

		return first, nil
	}

	items := []Expr{first}

	for p.accept(TokenComma) {
		e, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}

		items = append(items, e)
	}

	tuple := &TupleLiteral{Items: items, base: base{start.Offset}}
	if !validTarget(tuple, false) {
		return nil, p.fail(ErrInvalidTarget, start, "cannot unpack into expression")
	}

	return tuple, nil
}

func validTarget(e Expr, member bool) bool {
	switch e := e.(type) {
	case *Identifier:
		return true
	case *Member:
		return member
	case *TupleLiteral:
		for _, item := range e.Items {
			if _, ok := item.(*Identifier); !ok {
				return false
			}
		}

		return len(e.Items) > 0
	}

	return false
}

func (p *parser) parseMacro() (Stmt, error) {
	t := p.next()

	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	loops := p.loops
	p.loops = 0
	body, err := p.parseBlock(TokenEndMacro)
	p.loops = loops

	if err != nil {
		return nil, err
	}

	p.next() // {%
	p.next() // endmacro

	if p.at(TokenIdentifier) {
		p.next()
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	return &Macro{Name: name.Text, Params: params, Body: body, base: base{t.Offset}}, nil
}

// parseParams parses "(a, b=expr, ...)". The parentheses are required.
func (p *parser) parseParams() ([]Parameter, error) {
	if _, err := p.expect(TokenOpenParen); err != nil {
		return nil, err
	}

	var params []Parameter

	for !p.at(TokenCloseParen) {
		name, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}

		param := Parameter{Name: name.Text}

		if p.accept(TokenAssign) {
			if param.Default, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}

		params = append(params, param)

		if !p.accept(TokenComma) {
			break
		}
	}

	_, err := p.expect(TokenCloseParen)

	return params, err
}

func (p *parser) parseCallBlock() (Stmt, error) {
	t := p.next()

	node := &CallBlock{base: base{t.Offset}}

	var err error

	if p.at(TokenOpenParen) {
		if node.CallerParams, err = p.parseParams(); err != nil {
			return nil, err
		}
	}

	start := p.peek()

	e, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	call, ok := e.(*Call)
	if !ok {
		return nil, p.unexpected(start, "macro call")
	}

	node.Call = call

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	loops := p.loops
	p.loops = 0
	node.Body, err = p.parseBlock(TokenEndCall)
	p.loops = loops

	if err != nil {
		return nil, err
	}

	return node, p.closeTag(TokenEndCall)
}

func (p *parser) parseFilterBlock() (Stmt, error) {
	t := p.next()

	var (
		chain   *FilterExpr
		operand Expr
	)

	for {
		f, err := p.parseFilterCall(operand)
		if err != nil {
			return nil, err
		}

		chain, operand = f, f

		if !p.accept(TokenPipe) {
			break
		}
	}

	if _, err := p.expect(TokenCloseStatement); err != nil {
		return nil, err
	}

	body, err := p.parseBlock(TokenEndFilter)
	if err != nil {
		return nil, err
	}

	return &FilterBlock{Filter: chain, Body: body, base: base{t.Offset}}, p.closeTag(TokenEndFilter)
}

// parseFilterCall parses "name" or "name(args)" applied to operand.
func (p *parser) parseFilterCall(operand Expr) (*FilterExpr, error) {
	t := p.peek()
	if t.Kind != TokenIdentifier && !t.Kind.IsKeyword() {
		return nil, p.unexpected(t, "filter name")
	}

	p.next()

	f := &FilterExpr{Operand: operand, Name: t.Text, base: base{t.Offset}}

	if p.at(TokenOpenParen) {
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		f.Args = args
	}

	return f, nil
}

// parseExpressionList parses one expression or a bare comma list as a tuple.
func (p *parser) parseExpressionList() (Expr, error) {
	start := p.peek()

	first, err := p.parseExpression()
	if err != nil || !p.at(TokenComma) {
		return first, err
	}

	items := []Expr{first}

	for p.accept(TokenComma) {
		if p.at(TokenCloseStatement) {
			break
		}

		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		items = append(items, e)
	}

	return &TupleLiteral{Items: items, base: base{start.Offset}}, nil
}

func (p *parser) parseExpression() (Expr, error) {
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.at(TokenIf) {
		return then, nil
	}

	t := p.next()

	test, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	node := &Ternary{Then: then, Test: test, base: base{t.Offset}}

	if p.accept(TokenElse) {
		if node.Else, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (p *parser) parseOr() (Expr, error) {
	return p.parseLogical(TokenOr, p.parseAnd)
}

func (p *parser) parseAnd() (Expr, error) {
	return p.parseLogical(TokenAnd, p.parseNot)
}

func (p *parser) parseLogical(op TokenKind, operand func() (Expr, error)) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for p.at(op) {
		t := p.next()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Right: right, Op: op, base: base{t.Offset}}
	}

	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if !p.at(TokenNot) {
		return p.parseComparison()
	}

	t := p.next()

	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	return &Unary{Operand: operand, Op: TokenNot, base: base{t.Offset}}, nil
}

var comparisonOps = []TokenKind{
	TokenEqual, TokenNotEqual,
	TokenLess, TokenLessEqual,
	TokenGreater, TokenGreaterEqual,
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()

		switch {
		case slices.Contains(comparisonOps, t.Kind), t.Kind == TokenIn:
			p.next()

			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}

			left = &Binary{Left: left, Right: right, Op: t.Kind, base: base{t.Offset}}

		case t.Kind == TokenNot && p.peekAt(1).Kind == TokenIn:
			p.next()
			p.next()

			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}

			left = &Unary{
				Operand: &Binary{Left: left, Right: right, Op: TokenIn, base: base{t.Offset}},
				Op:      TokenNot,
				base:    base{t.Offset},
			}

		case t.Kind == TokenIs:
			p.next()

			if left, err = p.parseTest(left, t); err != nil {
				return nil, err
			}

		default:
			return left, nil
		}
	}
}

// testArgStart lists tokens that begin an unparenthesized test argument.
var testArgStart = []TokenKind{
	TokenString, TokenInteger, TokenFloat, TokenIdentifier,
	TokenTrue, TokenFalse, TokenNone,
	TokenOpenBracket, TokenOpenBrace,
}

func (p *parser) parseTest(operand Expr, is Token) (Expr, error) {
	node := &TestExpr{Operand: operand, base: base{is.Offset}}
	node.Negated = p.accept(TokenNot)

	name := p.peek()

	switch {
	case name.Kind == TokenIdentifier:
		node.Name = name.Text
	case name.Kind.IsKeyword():
		node.Name = strings.ToLower(name.Text)
	default:
		return nil, p.unexpected(name, "test name")
	}

	p.next()

	switch {
	case p.at(TokenOpenParen):
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		node.Args = args

	case p.at(testArgStart...):
		arg, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}

		node.Args.Positional = []Expr{arg}
	}

	return node, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFilterExpr()
	if err != nil {
		return nil, err
	}

	for p.at(TokenPlus, TokenMinus, TokenTilde) {
		t := p.next()

		right, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Right: right, Op: t.Kind, base: base{t.Offset}}
	}

	return left, nil
}

func (p *parser) parseFilterExpr() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.accept(TokenPipe) {
		f, err := p.parseFilterCall(left)
		if err != nil {
			return nil, err
		}

		left = f
	}

	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	for p.at(TokenStar, TokenSlash, TokenFloorDiv, TokenPercent) {
		t := p.next()

		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Right: right, Op: t.Kind, base: base{t.Offset}}
	}

	return left, nil
}

func (p *parser) parsePower() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.at(TokenPow) {
		t := p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Right: right, Op: TokenPow, base: base{t.Offset}}
	}

	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()

	switch t.Kind {
	case TokenMinus, TokenPlus:
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Unary{Operand: operand, Op: t.Kind, base: base{t.Offset}}, nil

	case TokenStar:
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Spread{Operand: operand, base: base{t.Offset}}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()

		switch t.Kind {
		case TokenDot:
			p.next()

			name := p.next()

			switch {
			case name.Kind == TokenIdentifier || name.Kind.IsKeyword():
				e = &Member{
					Object:   e,
					Property: &Identifier{Name: name.Text, base: base{name.Offset}},
					base:     base{t.Offset},
				}
			case name.Kind == TokenInteger:
				n, _ := strconv.ParseInt(name.Text, 10, 64)
				e = &Member{
					Object:   e,
					Property: &IntegerLiteral{Value: n, base: base{name.Offset}},
					Computed: true,
					base:     base{t.Offset},
				}
			default:
				return nil, p.unexpected(name, "attribute name")
			}

		case TokenOpenBracket:
			if e, err = p.parseSubscript(e); err != nil {
				return nil, err
			}

		case TokenOpenParen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}

			e = &Call{Callee: e, Args: args, base: base{t.Offset}}

		default:
			return e, nil
		}
	}
}

// parseSubscript parses "[expr]" or "[start:stop:step]".
func (p *parser) parseSubscript(object Expr) (Expr, error) {
	t := p.next() // [

	var (
		parts [3]Expr
		slice bool
		err   error
	)

	for i := range parts {
		if !p.at(TokenColon, TokenCloseBracket) {
			if parts[i], err = p.parseExpression(); err != nil {
				return nil, err
			}
		}

		if i == 2 || !p.accept(TokenColon) {
			break
		}

		slice = true
	}

	if _, err := p.expect(TokenCloseBracket); err != nil {
		return nil, err
	}

	if slice {
		return &Slice{
			Object: object,
			Start:  parts[0],
			Stop:   parts[1],
			Step:   parts[2],
			base:   base{t.Offset},
		}, nil
	}

	if parts[0] == nil {
		return nil, p.unexpected(p.tokens[p.pos-1], "subscript expression")
	}

	return &Member{Object: object, Property: parts[0], Computed: true, base: base{t.Offset}}, nil
}

// parseArguments parses a parenthesized argument list.
func (p *parser) parseArguments() (Arguments, error) {
	var args Arguments

	if _, err := p.expect(TokenOpenParen); err != nil {
		return args, err
	}

	spread := false

	for !p.at(TokenCloseParen) {
		t := p.peek()

		switch {
		case t.Kind == TokenPow:
			if args.Kwargs != nil {
				return args, p.fail(ErrArgumentOrder, t, "multiple ** arguments")
			}

			p.next()

			e, err := p.parseExpression()
			if err != nil {
				return args, err
			}

			args.Kwargs = e

		case t.Kind == TokenIdentifier && p.peekAt(1).Kind == TokenAssign:
			if args.Kwargs != nil {
				return args, p.fail(ErrArgumentOrder, t, "keyword argument follows ** argument")
			}

			p.next()
			p.next()

			e, err := p.parseExpression()
			if err != nil {
				return args, err
			}

			args.Keywords = append(args.Keywords, Keyword{Name: t.Text, Value: e})

		default:
			if len(args.Keywords) > 0 || args.Kwargs != nil {
				return args, p.fail(ErrArgumentOrder, t, "positional argument follows keyword argument")
			}

			e, err := p.parseExpression()
			if err != nil {
				return args, err
			}

			if _, ok := e.(*Spread); ok {
				if spread {
					return args, p.fail(ErrArgumentOrder, t, "multiple * arguments")
				}

				spread = true
			}

			args.Positional = append(args.Positional, e)
		}

		if !p.accept(TokenComma) {
			break
		}
	}

	_, err := p.expect(TokenCloseParen)

	return args, err
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	b := base{t.Offset}

	switch t.Kind {
	case TokenInteger:
		p.next()

		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, p.fail(ErrUnexpectedToken, t, "integer out of range: "+t.Text)
		}

		return &IntegerLiteral{Value: n, base: b}, nil

	case TokenFloat:
		p.next()

		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, p.fail(ErrUnexpectedToken, t, "invalid float: "+t.Text)
		}

		return &FloatLiteral{Value: f, base: b}, nil

	case TokenString:
		p.next()

		s := t.Text
		for p.at(TokenString) {
			s += p.next().Text
		}

		return &StringLiteral{Value: s, base: b}, nil

	case TokenTrue, TokenFalse:
		p.next()

		return &BooleanLiteral{Value: t.Kind == TokenTrue, base: b}, nil

	case TokenNone:
		p.next()

		return &NullLiteral{base: b}, nil

	case TokenIdentifier:
		p.next()

		return &Identifier{Name: t.Text, base: b}, nil

	case TokenOpenParen:
		return p.parseParenthesized()

	case TokenOpenBracket:
		p.next()

		items, err := p.parseList(TokenCloseBracket)
		if err != nil {
			return nil, err
		}

		return &ArrayLiteral{Items: items, base: b}, nil

	case TokenOpenBrace:
		return p.parseObject()
	}

	return nil, p.unexpected(t, "expression")
}

func (p *parser) parseParenthesized() (Expr, error) {
	t := p.next() // (

	if p.accept(TokenCloseParen) {
		return &TupleLiteral{base: base{t.Offset}}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.accept(TokenCloseParen) {
		return first, nil
	}

	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	rest, err := p.parseList(TokenCloseParen)
	if err != nil {
		return nil, err
	}

	return &TupleLiteral{Items: append([]Expr{first}, rest...), base: base{t.Offset}}, nil
}

// parseList parses comma-separated expressions through the closing token,
// allowing a trailing comma.
func (p *parser) parseList(closing TokenKind) ([]Expr, error) {
	var items []Expr

	for !p.at(closing) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		items = append(items, e)

		if !p.accept(TokenComma) {
			break
		}
	}

	_, err := p.expect(closing)

	return items, err
}

func (p *parser) parseObject() (Expr, error) {
	t := p.next() // {

	node := &ObjectLiteral{base: base{t.Offset}}

	for !p.at(TokenCloseBrace) {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		node.Entries = append(node.Entries, ObjectEntry{Key: key, Value: value})

		if !p.accept(TokenComma) {
			break
		}
	}

	if _, err := p.expect(TokenCloseBrace); err != nil {
		return nil, err
	}

	return node, nil
}
