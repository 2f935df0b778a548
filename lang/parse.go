package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"

	"github.com/ardnew/lent/log"
)

// ParseReader parses a resource from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*AST, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	// This allows data to be pre-fetched while we process previous chunks.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := applyOptions(opts...)
	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses a resource from source text.
func ParseString(ctx context.Context, source string, opts ...Option) (*AST, error) {
	o := applyOptions(opts...)

	p := &parser{
		input:  []byte(source),
		pos:    0,
		line:   1,
		col:    1,
		logger: o.logger,
	}

	ast, err := p.parseResource()
	if err != nil {
		return nil, parseFail(err, source)
	}

	p.logger.TraceContext(ctx, "parsed resource",
		slog.Int("node_count", len(ast.Nodes)))

	return ast, nil
}

// parseFail attaches source context to a positioned parse error so
// callers can render the offending line.
func parseFail(err error, source string) error {
	var e *Error
	if errors.As(err, &e) {
		if pos, ok := e.Position(); ok {
			return NewParseError(err, source, pos)
		}
	}
	return err
}

// parser walks the raw input byte by byte, tracking line and column for
// error positions.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	logger log.Logger
}

// parseResource parses the entire input as a flat sequence of
// top-level entries: entities, macros, comments, and imports.
func (p *parser) parseResource() (*AST, error) {
	ast := &AST{Nodes: []*Node{}}

	for p.skipWhitespace(); !p.eof(); p.skipWhitespace() {
		n, err := p.parseEntry()
		if err != nil {
			return nil, err
		}

		ast.Nodes = append(ast.Nodes, n)
	}

	return ast, nil
}

// parseEntry dispatches on the first token of a top-level entry.
func (p *parser) parseEntry() (*Node, error) {
	switch {
	case p.peek() == '<':
		return p.parseDefinition()

	case p.peekN(2) == "/*":
		return p.parseComment()

	case p.peekKeyword("import"):
		return p.parseImport()

	default:
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "entry"))
	}
}

// parseComment parses: '/*' text '*/'.
func (p *parser) parseComment() (*Node, error) {
	pos := p.position()

	p.advance() // skip '/'
	p.advance() // skip '*'

	start := p.pos

	for !p.eof() {
		if p.peek() == '*' && p.peekN(2) == "*/" {
			text := string(p.input[start:p.pos])

			p.advance() // skip '*'
			p.advance() // skip '/'

			return &Node{Kind: KindComment, Text: text, Pos: pos}, nil
		}

		p.advance()
	}

	return nil, ErrParse.WithPosition(pos).
		With(slog.String("expected", "*/"))
}

// parseImport parses: 'import' '(' string ')'.
func (p *parser) parseImport() (*Node, error) {
	pos := p.position()

	for range "import" {
		p.advance()
	}

	p.skipWhitespace()

	if !p.expect('(') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "("))
	}

	p.skipWhitespace()

	path, err := p.parseQuoted()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect(')') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", ")"))
	}

	return &Node{Kind: KindImport, Text: path, Pos: pos}, nil
}

// parseDefinition parses an entity or macro definition. Both open
// with '<' identifier; a '(' immediately after the identifier makes
// it a macro.
func (p *parser) parseDefinition() (*Node, error) {
	pos := p.position()

	p.advance() // skip '<'

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, ErrParse.WithPosition(pos).Wrap(err)
	}

	if p.peek() == '(' {
		return p.parseMacro(pos, name)
	}

	return p.parseEntity(pos, name)
}

// parseEntity parses the remainder of:
// '<' id index? value? attribute* '>'.
// The index brackets must follow the identifier without whitespace;
// after whitespace, '[' opens an array value instead.
func (p *parser) parseEntity(pos Position, name string) (*Node, error) {
	n := &Node{
		Kind:  KindEntity,
		Name:  name,
		Local: strings.HasPrefix(name, "_"),
		Pos:   pos,
	}

	if p.peek() == '[' {
		index, err := p.parseIndex()
		if err != nil {
			return nil, err
		}

		n.Index = index
	}

	p.skipWhitespace()

	if isValueStart(p.peek()) {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		n.X = value
	}

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", ">")).
				With(slog.String("entity", name))
		}

		if p.peek() == '>' {
			p.advance()

			break
		}

		attr, err := p.parseAttributeDef()
		if err != nil {
			return nil, err
		}

		n.List = append(n.List, attr)
	}

	return n, nil
}

// parseAttributeDef parses: id index? ':' value.
func (p *parser) parseAttributeDef() (*Node, error) {
	pos := p.position()

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, ErrParse.WithPosition(pos).Wrap(err)
	}

	n := &Node{
		Kind:  KindAttributeDef,
		Name:  name,
		Local: strings.HasPrefix(name, "_"),
		Pos:   pos,
	}

	if p.peek() == '[' {
		index, err := p.parseIndex()
		if err != nil {
			return nil, err
		}

		n.Index = index
	}

	p.skipWhitespace()

	if !p.expect(':') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", ":")).
			With(slog.String("attribute", name))
	}

	p.skipWhitespace()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	n.X = value

	return n, nil
}

// parseMacro parses the remainder of:
// '<' id '(' params? ')' '{' expression '}' '>'.
// Parameters are '$'-prefixed identifiers.
func (p *parser) parseMacro(pos Position, name string) (*Node, error) {
	n := &Node{
		Kind:  KindMacro,
		Name:  name,
		Local: strings.HasPrefix(name, "_"),
		Pos:   pos,
	}

	p.advance() // skip '('

	for {
		p.skipWhitespace()

		if p.peek() == ')' {
			p.advance()

			break
		}

		if !p.expect('$') {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "$")).
				With(slog.String("macro", name))
		}

		param, err := p.parseIdentifier()
		if err != nil {
			return nil, ErrParse.WithPosition(p.position()).Wrap(err)
		}

		n.Params = append(n.Params, param)

		p.skipWhitespace()

		if p.peek() == ',' {
			p.advance()
		}
	}

	p.skipWhitespace()

	if !p.expect('{') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "{")).
			With(slog.String("macro", name))
	}

	p.skipWhitespace()

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	n.X = body

	p.skipWhitespace()

	if !p.expect('}') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "}")).
			With(slog.String("macro", name))
	}

	p.skipWhitespace()

	if !p.expect('>') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", ">")).
			With(slog.String("macro", name))
	}

	return n, nil
}

// parseIndex parses: '[' expression (',' expression)* ']'.
func (p *parser) parseIndex() ([]*Node, error) {
	p.advance() // skip '['

	var exprs []*Node

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "]"))
		}

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)

		p.skipWhitespace()

		if p.peek() == ',' {
			p.advance()

			continue
		}

		if !p.expect(']') {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "]"))
		}

		break
	}

	return exprs, nil
}

// parseValue parses a value: string, hash, or array.
func (p *parser) parseValue() (*Node, error) {
	switch p.peek() {
	case '"', '\'':
		return p.parseStringValue()

	case '{':
		return p.parseHash()

	case '[':
		return p.parseArray()

	default:
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "value"))
	}
}

func isValueStart(r rune) bool {
	return r == '"' || r == '\'' || r == '{' || r == '['
}

// parseStringValue parses a quoted string. '{' opens an embedded
// expression; a backslash escapes the next character. A string with
// no embedded expressions parses to a plain literal node so only
// interpolations pay for the reentrancy guard.
func (p *parser) parseStringValue() (*Node, error) {
	pos := p.position()
	quote := p.peek()

	p.advance() // skip opening quote

	var (
		parts   []*Node
		sb      strings.Builder
		spanPos = p.position()
		hasExpr bool
	)

	flush := func() {
		if sb.Len() == 0 {
			return
		}

		parts = append(parts, &Node{
			Kind: KindString,
			Text: sb.String(),
			Pos:  spanPos,
		})
		sb.Reset()
	}

	for {
		if p.eof() {
			return nil, ErrParse.WithPosition(pos).
				With(slog.String("expected", string(quote)))
		}

		ch := p.peek()

		switch {
		case ch == quote:
			p.advance()

			if !hasExpr {
				return &Node{Kind: KindString, Text: sb.String(), Pos: pos}, nil
			}

			flush()

			return &Node{Kind: KindInterpolation, List: parts, Pos: pos}, nil

		case ch == '\\':
			p.advance()

			if p.eof() {
				return nil, ErrParse.WithPosition(pos).
					With(slog.String("expected", string(quote)))
			}

			sb.WriteRune(p.peek())
			p.advance()

		case ch == '{':
			hasExpr = true

			flush()

			p.advance() // skip '{'
			p.skipWhitespace()

			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			p.skipWhitespace()

			if !p.expect('}') {
				return nil, ErrParse.WithPosition(p.position()).
					With(slog.String("expected", "}"))
			}

			parts = append(parts, expr)
			spanPos = p.position()

		default:
			sb.WriteRune(ch)
			p.advance()
		}
	}
}

// parseQuoted parses a plain quoted string with no embedded
// expressions, for positions that need literal text.
func (p *parser) parseQuoted() (string, error) {
	pos := p.position()
	quote := p.peek()

	if quote != '"' && quote != '\'' {
		return "", ErrParse.WithPosition(pos).
			With(slog.String("expected", "string"))
	}

	p.advance() // skip opening quote

	var sb strings.Builder

	for !p.eof() {
		ch := p.peek()

		if ch == quote {
			p.advance()

			return sb.String(), nil
		}

		if ch == '\\' {
			p.advance()

			if p.eof() {
				break
			}

			ch = p.peek()
		}

		sb.WriteRune(ch)
		p.advance()
	}

	return "", ErrParse.WithPosition(pos).
		With(slog.String("expected", string(quote)))
}

// parseHash parses: '{' hashItem (',' hashItem)* ','? '}'.
func (p *parser) parseHash() (*Node, error) {
	pos := p.position()

	p.advance() // skip '{'

	var items []*Node

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "}"))
		}

		if p.peek() == '}' {
			p.advance()

			break
		}

		item, err := p.parseHashItem()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		p.skipWhitespace()

		if p.peek() == ',' {
			p.advance()
		}
	}

	if len(items) == 0 {
		return nil, ErrParse.WithPosition(pos).
			With(slog.String("expected", "hash item"))
	}

	return &Node{Kind: KindHash, List: items, Pos: pos}, nil
}

// parseHashItem parses: '*'? id ':' value. The '*' marks the item as
// the hash's default branch.
func (p *parser) parseHashItem() (*Node, error) {
	pos := p.position()

	def := false
	if p.peek() == '*' {
		def = true

		p.advance()
	}

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, ErrParse.WithPosition(pos).Wrap(err)
	}

	p.skipWhitespace()

	if !p.expect(':') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", ":")).
			With(slog.String("key", name))
	}

	p.skipWhitespace()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:    KindHashItem,
		Name:    name,
		Default: def,
		X:       value,
		Pos:     pos,
	}, nil
}

// parseArray parses: '[' value (',' value)* ','? ']'.
func (p *parser) parseArray() (*Node, error) {
	pos := p.position()

	p.advance() // skip '['

	var elems []*Node

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "]"))
		}

		if p.peek() == ']' {
			p.advance()

			break
		}

		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		elems = append(elems, elem)

		p.skipWhitespace()

		if p.peek() == ',' {
			p.advance()
		}
	}

	if len(elems) == 0 {
		return nil, ErrParse.WithPosition(pos).
			With(slog.String("expected", "array element"))
	}

	return &Node{Kind: KindArray, List: elems, Pos: pos}, nil
}

// Expression grammar, by descending precedence:
// conditional, logical or, logical and, equality, relational,
// additive, multiplicative, unary, postfix, primary.

func (p *parser) parseExpression() (*Node, error) {
	return p.parseConditional()
}

// parseConditional parses: or ('?' expression ':' expression)?.
func (p *parser) parseConditional() (*Node, error) {
	x, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if p.peek() != '?' {
		return x, nil
	}

	p.advance() // skip '?'
	p.skipWhitespace()

	y, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect(':') {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", ":"))
	}

	p.skipWhitespace()

	z, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Node{Kind: KindConditional, X: x, Y: y, Z: z, Pos: x.Pos}, nil
}

func (p *parser) parseLogicalOr() (*Node, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, KindLogical, "||")
}

func (p *parser) parseLogicalAnd() (*Node, error) {
	return p.parseBinaryLevel(p.parseEquality, KindLogical, "&&")
}

func (p *parser) parseEquality() (*Node, error) {
	return p.parseBinaryLevel(p.parseRelational, KindBinary, "==", "!=")
}

func (p *parser) parseRelational() (*Node, error) {
	return p.parseBinaryLevel(p.parseAdditive, KindBinary, "<=", ">=", "<", ">")
}

func (p *parser) parseAdditive() (*Node, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, KindBinary, "+", "-")
}

func (p *parser) parseMultiplicative() (*Node, error) {
	return p.parseBinaryLevel(p.parseUnary, KindBinary, "*", "/", "%")
}

// parseBinaryLevel parses one left-associative precedence level.
// Operator tokens are matched longest-first by listing two-character
// tokens before their one-character prefixes.
func (p *parser) parseBinaryLevel(
	next func() (*Node, error),
	kind Kind,
	ops ...string,
) (*Node, error) {
	x, err := next()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()

		op := p.matchOperator(ops)
		if op == "" {
			return x, nil
		}

		p.skipWhitespace()

		y, err := next()
		if err != nil {
			return nil, err
		}

		x = &Node{Kind: kind, Op: op, X: x, Y: y, Pos: x.Pos}
	}
}

// matchOperator consumes and returns the first matching token, or ""
// when none matches. Callers list two-character tokens before their
// one-character prefixes, so "<=" wins over '<'.
func (p *parser) matchOperator(ops []string) string {
	for _, op := range ops {
		if p.peekN(len(op)) != op {
			continue
		}

		for range op {
			p.advance()
		}

		return op
	}

	return ""
}

// parseUnary parses: ('-' | '+' | '!') unary | postfix.
func (p *parser) parseUnary() (*Node, error) {
	pos := p.position()

	ch := p.peek()
	if ch == '-' || ch == '+' || ch == '!' {
		// "!=" is handled at the equality level; a '!' followed by
		// '=' cannot begin a unary expression.
		if ch == '!' && p.peekN(2) == "!=" {
			return nil, ErrParse.WithPosition(pos).
				With(slog.String("expected", "expression"))
		}

		p.advance()
		p.skipWhitespace()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Node{Kind: KindUnary, Op: string(ch), X: x, Pos: pos}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any number of member,
// attribute, call, or computed-index accesses.
func (p *parser) parsePostfix() (*Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.peekN(2) == "::":
			p.advance()
			p.advance()

			y, err := p.parseMemberKey()
			if err != nil {
				return nil, err
			}

			x = &Node{Kind: KindAttributeAccess, X: x, Y: y, Pos: x.Pos}

		case p.peek() == '.':
			p.advance()

			y, err := p.parseMemberKey()
			if err != nil {
				return nil, err
			}

			x = &Node{Kind: KindProperty, X: x, Y: y, Pos: x.Pos}

		case p.peek() == '[':
			p.advance()
			p.skipWhitespace()

			y, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			p.skipWhitespace()

			if !p.expect(']') {
				return nil, ErrParse.WithPosition(p.position()).
					With(slog.String("expected", "]"))
			}

			x = &Node{Kind: KindProperty, X: x, Y: y, Pos: x.Pos}

		case p.peek() == '(':
			p.advance()

			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}

			x = &Node{Kind: KindCall, X: x, List: args, Pos: x.Pos}

		default:
			return x, nil
		}
	}
}

// parseMemberKey parses the token after '.' or '::': an identifier,
// or a bracketed expression for computed access.
func (p *parser) parseMemberKey() (*Node, error) {
	pos := p.position()

	if p.peek() == '[' {
		p.advance()
		p.skipWhitespace()

		y, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()

		if !p.expect(']') {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", "]"))
		}

		return y, nil
	}

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, ErrParse.WithPosition(pos).Wrap(err)
	}

	return &Node{Kind: KindIdentifier, Name: name, Pos: pos}, nil
}

// parseArguments parses the remainder of a call:
// (expression (',' expression)*)? ')'.
func (p *parser) parseArguments() ([]*Node, error) {
	var args []*Node

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", ")"))
		}

		if p.peek() == ')' {
			p.advance()

			return args, nil
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipWhitespace()

		if p.peek() == ',' {
			p.advance()
		}
	}
}

// parsePrimary parses the atoms of the expression grammar.
func (p *parser) parsePrimary() (*Node, error) {
	pos := p.position()
	ch := p.peek()

	switch {
	case ch >= '0' && ch <= '9':
		return p.parseNumber()

	case ch == '"' || ch == '\'':
		return p.parseStringValue()

	case ch == '$':
		p.advance()

		name, err := p.parseIdentifier()
		if err != nil {
			return nil, ErrParse.WithPosition(pos).Wrap(err)
		}

		return &Node{Kind: KindVariable, Name: name, Pos: pos}, nil

	case ch == '@':
		p.advance()

		name, err := p.parseIdentifier()
		if err != nil {
			return nil, ErrParse.WithPosition(pos).Wrap(err)
		}

		return &Node{Kind: KindGlobal, Name: name, Pos: pos}, nil

	case ch == '~':
		p.advance()

		return &Node{Kind: KindThis, Pos: pos}, nil

	case ch == '(':
		p.advance()
		p.skipWhitespace()

		x, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()

		if !p.expect(')') {
			return nil, ErrParse.WithPosition(p.position()).
				With(slog.String("expected", ")"))
		}

		return x, nil

	case ch == '{':
		return p.parseHash()

	case ch == '[':
		return p.parseArray()

	case isIdentifierStart(ch):
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, ErrParse.WithPosition(pos).Wrap(err)
		}

		return &Node{Kind: KindIdentifier, Name: name, Pos: pos}, nil

	default:
		return nil, ErrParse.WithPosition(pos).
			With(slog.String("expected", "expression"))
	}
}

// parseNumber parses: digits ('.' digits)?.
func (p *parser) parseNumber() (*Node, error) {
	pos := p.position()
	start := p.pos

	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.advance()
	}

	if p.peek() == '.' && p.pos+1 < len(p.input) {
		next := rune(p.input[p.pos+1])
		if next >= '0' && next <= '9' {
			p.advance() // skip '.'

			for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
				p.advance()
			}
		}
	}

	text := string(p.input[start:p.pos])

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, ErrParse.WithPosition(pos).Wrap(err).
			With(slog.String("literal", text))
	}

	return &Node{Kind: KindNumber, Number: f, Pos: pos}, nil
}

// parseIdentifier consumes the identifier at the cursor.
func (p *parser) parseIdentifier() (string, error) {
	if !isIdentifierStart(p.peek()) {
		return "", ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "identifier"))
	}

	start := p.pos

	for p.advance(); isIdentifierContinue(p.peek()); p.advance() {
	}

	return string(p.input[start:p.pos]), nil
}

// peekKeyword reports whether the input continues with word followed
// by a non-identifier character.
func (p *parser) peekKeyword(word string) bool {
	if p.peekN(len(word)) != word {
		return false
	}

	if p.pos+len(word) >= len(p.input) {
		return true
	}

	r, _ := utf8.DecodeRune(p.input[p.pos+len(word):])

	return !isIdentifierContinue(r)
}

// decode returns the rune under the cursor and its encoded width, or
// (0, 0) at end of input.
func (p *parser) decode() (rune, int) {
	if p.eof() {
		return 0, 0
	}

	return utf8.DecodeRune(p.input[p.pos:])
}

func (p *parser) peek() rune {
	r, _ := p.decode()

	return r
}

func (p *parser) peekN(n int) string {
	if end := p.pos + n; end <= len(p.input) {
		return string(p.input[p.pos:end])
	}

	return string(p.input[p.pos:])
}

func (p *parser) advance() {
	r, size := p.decode()
	if size == 0 {
		return
	}

	p.pos += size

	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// expect consumes ch if it is next, reporting whether it did.
func (p *parser) expect(ch rune) bool {
	if p.peek() != ch {
		return false
	}

	p.advance()

	return true
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *parser) skipWhitespace() {
	for unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// Identifier characters follow Unicode UAX #31 ID_Start / ID_Continue,
// with '_' additionally allowed as a leading character.
var (
	idStart = []*unicode.RangeTable{
		unicode.L, unicode.Nl, unicode.Other_ID_Start,
	}
	idContinue = []*unicode.RangeTable{
		unicode.L, unicode.Nl, unicode.Other_ID_Start,
		unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc,
		unicode.Other_ID_Continue,
	}
)

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.In(r, idStart...)
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r, idContinue...)
}
