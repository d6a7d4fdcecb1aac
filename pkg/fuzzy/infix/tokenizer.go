// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package infix converts infix text into a postfix token stream and evaluates
// numeric postfix programs.
//
// The same conversion serves two callers. Rule antecedents use it to resolve the
// precedence of "and" and "or" (and any parentheses) before their propositions
// are assembled into a tree; Function terms use it, with functions enabled, to
// compile arithmetic formulas over input variables.
//
// Precedence, from highest to lowest:
//
//	!  ~          unary not, unary negate
//	^             power (right associative)
//	*  /  %
//	+  -
//	and
//	or
package infix

import (
	"strings"
	"unicode"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

// Operator describes an infix operator.
type Operator struct {
	Symbol     string
	Precedence int
	Arity      int
	RightAssoc bool
}

// Operators maps each symbol to its definition.
var Operators = map[string]Operator{
	"!":   {Symbol: "!", Precedence: 100, Arity: 1, RightAssoc: true},
	"~":   {Symbol: "~", Precedence: 100, Arity: 1, RightAssoc: true},
	"^":   {Symbol: "^", Precedence: 90, Arity: 2, RightAssoc: true},
	"*":   {Symbol: "*", Precedence: 80, Arity: 2},
	"/":   {Symbol: "/", Precedence: 80, Arity: 2},
	"%":   {Symbol: "%", Precedence: 80, Arity: 2},
	"+":   {Symbol: "+", Precedence: 70, Arity: 2},
	"-":   {Symbol: "-", Precedence: 70, Arity: 2},
	"and": {Symbol: "and", Precedence: 60, Arity: 2},
	"or":  {Symbol: "or", Precedence: 50, Arity: 2},
}

// IsOperator reports whether token is a registered operator.
func IsOperator(token string) bool {
	_, ok := Operators[token]
	return ok
}

const symbols = "!~^*/%+-"

func isSymbol(r rune) bool { return strings.ContainsRune(symbols, r) }

func isSeparator(r rune) bool { return r == '(' || r == ')' || r == ',' }

// Tokenize splits text into operands, operators, parentheses and commas. A minus
// or plus sign in prefix position is folded into the number that follows it; a
// prefix minus before anything else becomes the negate operator "~".
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	prefix := func() bool {
		if len(tokens) == 0 {
			return true
		}
		last := tokens[len(tokens)-1]
		return last == "(" || last == "," || IsOperator(last)
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			flush()
		case isSeparator(r):
			flush()
			tokens = append(tokens, string(r))
		case isSymbol(r):
			flush()
			if (r == '-' || r == '+') && prefix() {
				if i+1 < len(runes) && (unicode.IsDigit(runes[i+1]) || runes[i+1] == '.') {
					if r == '-' {
						word.WriteRune(r)
					}
					continue
				}
				if r == '-' {
					tokens = append(tokens, "~")
				}
				continue
			}
			tokens = append(tokens, string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// Format returns text with every token separated by a single space.
func Format(text string) string {
	return strings.Join(Tokenize(text), " ")
}

type options struct {
	functions bool
}

// Option configures ToPostfix.
type Option func(*options)

// WithFunctions makes ToPostfix recognize the registered functions. Without it,
// function names are treated as plain operands, which keeps rule texts free to
// use names such as "max" for terms.
func WithFunctions() Option {
	return func(o *options) { o.functions = true }
}

// ToPostfix converts infix text into a space-separated postfix stream using the
// shunting-yard algorithm.
func ToPostfix(text string, opts ...Option) (string, error) {
	tokens, err := postfixTokens(text, opts...)
	if err != nil {
		return "", err
	}
	return strings.Join(tokens, " "), nil
}

func postfixTokens(text string, opts ...Option) ([]string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	isFunction := func(token string) bool {
		if !o.functions {
			return false
		}
		_, ok := Functions[token]
		return ok
	}

	var out, stack []string
	pop := func() string {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}
	// popUntilParenthesis moves operators to the output until "(" is on top.
	popUntilParenthesis := func() bool {
		for len(stack) > 0 {
			if stack[len(stack)-1] == "(" {
				return true
			}
			out = append(out, pop())
		}
		return false
	}

	for _, token := range Tokenize(text) {
		switch {
		case IsOperator(token):
			current := Operators[token]
			for len(stack) > 0 {
				top, ok := Operators[stack[len(stack)-1]]
				if !ok {
					break
				}
				if current.Arity == 1 {
					break
				}
				if (!current.RightAssoc && current.Precedence <= top.Precedence) ||
					(current.RightAssoc && current.Precedence < top.Precedence) {
					out = append(out, pop())
					continue
				}
				break
			}
			stack = append(stack, token)
		case isFunction(token), token == "(":
			stack = append(stack, token)
		case token == ",":
			if !popUntilParenthesis() {
				return nil, fuzzyerr.Parse(token, strings.Join(out, " "), "mismatched parentheses or misplaced comma")
			}
		case token == ")":
			if !popUntilParenthesis() {
				return nil, fuzzyerr.Parse(token, strings.Join(out, " "), "mismatched parentheses")
			}
			pop()
			if len(stack) > 0 && isFunction(stack[len(stack)-1]) {
				out = append(out, pop())
			}
		default:
			out = append(out, token)
		}
	}

	for len(stack) > 0 {
		top := pop()
		if top == "(" {
			return nil, fuzzyerr.Parse(top, strings.Join(out, " "), "mismatched parentheses")
		}
		out = append(out, top)
	}
	return out, nil
}
