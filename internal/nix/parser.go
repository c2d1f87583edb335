package nix

import "fmt"

// Parse parses flake manifest source into an expression tree. The parser
// understands the subset of the language the editor needs structure for
// (attribute sets, dotted binding keys, string and URI literals, lambda
// heads) and folds everything else into catch-all Other nodes with
// balanced-delimiter scanning, so arbitrary outputs bodies parse fine.
func Parse(src string) (Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	expr, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokEOF {
		tok := p.peek()
		return nil, &ParseError{Pos: tok.start, Msg: fmt.Sprintf("unexpected %q after expression", tok.text)}
	}
	return expr, nil
}

type parser struct {
	toks []token
	cur  int
}

func (p *parser) peek() token {
	return p.toks[p.cur]
}

func (p *parser) peekAt(n int) token {
	if p.cur+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.cur+n]
}

func (p *parser) next() token {
	tok := p.toks[p.cur]
	if tok.typ != tokEOF {
		p.cur++
	}
	return tok
}

func (p *parser) expect(typ tokenType, what string) (token, error) {
	tok := p.peek()
	if tok.typ != typ {
		return token{}, &ParseError{Pos: tok.start, Msg: fmt.Sprintf("expected %s, found %q", what, tok.text)}
	}
	return p.next(), nil
}

// atValueEnd reports whether the current token terminates a value: the `;`
// of the enclosing binding, or end of input for a top-level expression.
func (p *parser) atValueEnd() bool {
	switch p.peek().typ {
	case tokSemi, tokEOF:
		return true
	}
	return false
}

// parseValue parses one expression in value position (the right-hand side of
// a binding, a lambda body, or the whole file).
func (p *parser) parseValue() (Expression, error) {
	tok := p.peek()

	switch tok.typ {
	case tokLBrace:
		if p.headFollows() {
			return p.parseFunction()
		}
		m, err := p.parseMap()
		if err != nil {
			return nil, err
		}
		if !p.atValueEnd() {
			// Something follows the closing brace (`{...} // {...}` and the
			// like): the whole thing is opaque to the editor.
			return p.consumeOther(tok, "expression")
		}
		return m, nil

	case tokIdent:
		switch tok.text {
		case "true", "false":
			if p.peekAt(1).typ == tokSemi || p.peekAt(1).typ == tokEOF {
				p.next()
				return &Other{Name: "bool", Src: Span{Start: tok.start, End: tok.end}}, nil
			}
		case "let":
			return p.consumeOther(tok, "let expression")
		}
		if p.peekAt(1).typ == tokColon || p.peekAt(1).typ == tokAt {
			return p.parseFunction()
		}
		return p.consumeOther(tok, "expression")

	case tokString:
		p.next()
		s := &String{Parts: tok.parts, Src: Span{Start: tok.start, End: tok.end}}
		if !p.atValueEnd() {
			return p.consumeOther(tok, "expression")
		}
		return s, nil

	case tokIndentString:
		p.next()
		s := &IndentedString{Parts: tok.parts, Src: Span{Start: tok.start, End: tok.end}}
		if !p.atValueEnd() {
			return p.consumeOther(tok, "expression")
		}
		return s, nil

	case tokURI:
		p.next()
		u := &Uri{Value: tok.text, Src: Span{Start: tok.start, End: tok.end}}
		if !p.atValueEnd() {
			return p.consumeOther(tok, "expression")
		}
		return u, nil

	case tokNumber:
		return p.consumeOther(tok, "number")

	case tokLBracket:
		return p.consumeOther(tok, "list")

	case tokEOF:
		return nil, &ParseError{Pos: tok.start, Msg: "unexpected end of input"}
	}

	return p.consumeOther(tok, "expression")
}

// headFollows reports whether the `{` at the current token opens a
// destructured lambda head rather than an attrset: it scans to the matching
// `}` and checks for a following `:` or `@`.
func (p *parser) headFollows() bool {
	depth := 0
	for i := p.cur; i < len(p.toks); i++ {
		switch p.toks[i].typ {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				next := p.peekAt(i - p.cur + 1)
				return next.typ == tokColon || next.typ == tokAt
			}
		case tokEOF:
			return false
		}
	}
	return false
}

// parseFunction parses a lambda: `name: body`, `{ args } : body`,
// `{ args } @ name: body` or `name @ { args }: body`.
func (p *parser) parseFunction() (Expression, error) {
	start := p.peek()

	// `name: body` or `name @ { args }: body`
	if start.typ == tokIdent {
		ident := p.next()
		if p.peek().typ == tokAt {
			p.next()
			head, err := p.parseDestructuredHead()
			if err != nil {
				return nil, err
			}
			head.Binding = ident.text
			head.Src.Start = ident.start
			return p.finishFunction(start, head)
		}
		head := &SimpleHead{Identifier: ident.text, Src: Span{Start: ident.start, End: ident.end}}
		return p.finishFunction(start, head)
	}

	head, err := p.parseDestructuredHead()
	if err != nil {
		return nil, err
	}
	if p.peek().typ == tokAt {
		p.next()
		name, err := p.expect(tokIdent, "binding name after `@`")
		if err != nil {
			return nil, err
		}
		head.Binding = name.text
		head.Src.End = name.end
	}
	return p.finishFunction(start, head)
}

func (p *parser) finishFunction(start token, head FunctionHead) (Expression, error) {
	if _, err := p.expect(tokColon, "`:` after function head"); err != nil {
		return nil, err
	}
	body, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &Function{
		Head: head,
		Body: body,
		Src:  Span{Start: start.start, End: body.Span().End},
	}, nil
}

// parseDestructuredHead parses `{ a, b ? default, ... }`.
func (p *parser) parseDestructuredHead() (*DestructuredHead, error) {
	open, err := p.expect(tokLBrace, "`{`")
	if err != nil {
		return nil, err
	}

	head := &DestructuredHead{Src: Span{Start: open.start}}
	for {
		tok := p.peek()
		switch tok.typ {
		case tokRBrace:
			p.next()
			head.Src.End = tok.end
			return head, nil

		case tokEllipsis:
			p.next()
			head.Ellipsis = true

		case tokIdent:
			p.next()
			arg := Argument{Identifier: tok.text, Src: Span{Start: tok.start, End: tok.end}}
			if p.peek().typ == tokOp && p.peek().text == "?" {
				p.next()
				if err := p.skipDefaultValue(); err != nil {
					return nil, err
				}
				arg.HasDefault = true
			}
			head.Arguments = append(head.Arguments, arg)

		case tokComma:
			p.next()

		default:
			return nil, &ParseError{Pos: tok.start, Msg: fmt.Sprintf("unexpected %q in function head", tok.text)}
		}
	}
}

// skipDefaultValue consumes the tokens of a `? default` clause, up to the
// comma or closing brace of the head, balancing any nested delimiters.
func (p *parser) skipDefaultValue() error {
	depth := 0
	for {
		tok := p.peek()
		switch tok.typ {
		case tokEOF:
			return &ParseError{Pos: tok.start, Msg: "unterminated default value in function head"}
		case tokLBrace, tokLBracket, tokLParen:
			depth++
		case tokRBrace:
			if depth == 0 {
				return nil
			}
			depth--
		case tokRBracket, tokRParen:
			depth--
		case tokComma:
			if depth == 0 {
				return nil
			}
		}
		p.next()
	}
}

// parseMap parses `{ bindings... }`.
func (p *parser) parseMap() (Expression, error) {
	open, err := p.expect(tokLBrace, "`{`")
	if err != nil {
		return nil, err
	}

	m := &Map{Src: Span{Start: open.start}}
	for {
		tok := p.peek()
		switch tok.typ {
		case tokRBrace:
			p.next()
			m.Src.End = tok.end
			return m, nil

		case tokEOF:
			return nil, &ParseError{Pos: open.start, Msg: "unterminated attrset"}

		case tokIdent:
			if tok.text == "inherit" {
				b, err := p.parseInherit()
				if err != nil {
					return nil, err
				}
				m.Bindings = append(m.Bindings, b)
				continue
			}
			b, err := p.parseKeyValue()
			if err != nil {
				return nil, err
			}
			m.Bindings = append(m.Bindings, b)

		case tokString:
			b, err := p.parseKeyValue()
			if err != nil {
				return nil, err
			}
			m.Bindings = append(m.Bindings, b)

		default:
			return nil, &ParseError{Pos: tok.start, Msg: fmt.Sprintf("unexpected %q in attrset", tok.text)}
		}
	}
}

// parseInherit consumes an `inherit ...;` binding through its semicolon.
func (p *parser) parseInherit() (Binding, error) {
	start := p.next() // inherit keyword
	for {
		tok := p.next()
		switch tok.typ {
		case tokSemi:
			return &Inherit{Src: Span{Start: start.start, End: tok.end}}, nil
		case tokEOF:
			return nil, &ParseError{Pos: start.start, Msg: "unterminated inherit binding"}
		}
	}
}

// parseKeyValue parses `key.path = value;`.
func (p *parser) parseKeyValue() (Binding, error) {
	var from []Part

	part, err := p.parseKeyPart()
	if err != nil {
		return nil, err
	}
	from = append(from, part)

	for p.peek().typ == tokDot {
		p.next()
		part, err := p.parseKeyPart()
		if err != nil {
			return nil, err
		}
		from = append(from, part)
	}

	if _, err := p.expect(tokAssign, "`=`"); err != nil {
		return nil, err
	}
	to, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(tokSemi, "`;` after binding")
	if err != nil {
		return nil, err
	}

	return &KeyValue{
		From: from,
		To:   to,
		Src:  Span{Start: from[0].Span().Start, End: semi.end},
	}, nil
}

// parseKeyPart parses one dotted key segment: a bare identifier or a quoted
// name like `"dotted.name"`. Dynamic (interpolated) keys are not supported.
func (p *parser) parseKeyPart() (Part, error) {
	tok := p.peek()
	switch tok.typ {
	case tokIdent:
		p.next()
		return &PartRaw{Content: tok.text, Src: Span{Start: tok.start, End: tok.end}}, nil

	case tokString:
		p.next()
		if len(tok.parts) != 1 {
			return nil, &ParseError{Pos: tok.start, Msg: "dynamic attribute keys are not supported"}
		}
		raw, ok := tok.parts[0].(*PartRaw)
		if !ok {
			return nil, &ParseError{Pos: tok.start, Msg: "dynamic attribute keys are not supported"}
		}
		// The span covers the quoted token so splice anchors include the
		// delimiters.
		return &PartRaw{Content: raw.Content, Src: Span{Start: tok.start, End: tok.end}}, nil
	}

	return nil, &ParseError{Pos: tok.start, Msg: fmt.Sprintf("expected attribute key, found %q", tok.text)}
}

// consumeOther swallows an expression the editor has no structural interest
// in, tracking delimiter balance until the terminating `;` (or end of input)
// of the enclosing value position. Semicolons owned by `let ... in`, `with`
// and `assert` forms at the current nesting level do not terminate the value.
func (p *parser) consumeOther(start token, name string) (Expression, error) {
	depth := 0
	ownedSemis := 0
	end := start.end

	for {
		tok := p.peek()
		switch tok.typ {
		case tokEOF:
			if depth != 0 {
				return nil, &ParseError{Pos: start.start, Msg: "unbalanced delimiters in expression"}
			}
			return &Other{Name: name, Src: Span{Start: start.start, End: end}}, nil

		case tokIdent:
			if depth == 0 {
				switch tok.text {
				case "with", "assert":
					ownedSemis++
				case "let":
					// Every binding of the let block ends in a semicolon;
					// they all belong to the expression until `in` closes it.
					ownedSemis = -1
				case "in":
					if ownedSemis < 0 {
						ownedSemis = 0
					}
				}
			}

		case tokSemi:
			if depth == 0 {
				if ownedSemis == 0 {
					return &Other{Name: name, Src: Span{Start: start.start, End: end}}, nil
				}
				if ownedSemis > 0 {
					ownedSemis--
				}
			}

		case tokLBrace, tokLBracket, tokLParen:
			depth++

		case tokRBrace, tokRBracket, tokRParen:
			if depth == 0 {
				return &Other{Name: name, Src: Span{Start: start.start, End: end}}, nil
			}
			depth--
		}
		end = tok.end
		p.next()
	}
}
