package answer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	calcRefusal = "I can only handle simple arithmetic."
	calcApology = "Sorry, I couldn't calculate that."
)

// Calculate evaluates a basic arithmetic expression. Input is restricted to
// the character set [-()0-9/*+.]; anything else (spaces included) would be
// altered by sanitization, so the expression is refused rather than evaluated
// in modified form. The function is total: failures come back as fixed
// strings, never as errors.
func Calculate(expression string) string {
	sanitized := sanitizeExpression(expression)
	if sanitized != expression {
		return calcRefusal
	}
	value, err := evalExpression(sanitized)
	if err != nil {
		return calcApology
	}
	return fmt.Sprintf("%s = %s", expression, strconv.FormatFloat(value, 'f', -1, 64))
}

func sanitizeExpression(expression string) string {
	var out strings.Builder
	for _, r := range expression {
		if strings.ContainsRune("-()0123456789/*+.", r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// evalExpression is a recursive-descent parser for + - * / with parentheses,
// decimal literals, and unary minus.
func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character at position %d", p.pos)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *exprParser) parseSum() (float64, error) {
	value, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return value, nil
		}
		p.pos++
		rhs, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			value += rhs
		} else {
			value -= rhs
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	value, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return value, nil
		}
		p.pos++
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			value *= rhs
		} else {
			if rhs == 0 {
				return 0, errors.New("division by zero")
			}
			value /= rhs
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if op, ok := p.peek(); ok && op == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	ch, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of expression")
	}
	if ch == '(' {
		p.pos++
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		next, ok := p.peek()
		if !ok || next != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}
	start := p.pos
	for {
		ch, ok := p.peek()
		if !ok || (ch != '.' && (ch < '0' || ch > '9')) {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}
