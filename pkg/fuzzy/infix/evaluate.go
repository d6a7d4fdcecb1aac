// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package infix

import (
	"math"
	"strconv"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

// Function is a named numeric function callable from formulas.
type Function struct {
	Arity int
	Eval  func(args ...float64) float64
}

func unary(f func(float64) float64) Function {
	return Function{Arity: 1, Eval: func(args ...float64) float64 { return f(args[0]) }}
}

func binary(f func(float64, float64) float64) Function {
	return Function{Arity: 2, Eval: func(args ...float64) float64 { return f(args[0], args[1]) }}
}

// Functions maps function names to their definitions.
var Functions = map[string]Function{
	"abs":   unary(math.Abs),
	"acos":  unary(math.Acos),
	"asin":  unary(math.Asin),
	"atan":  unary(math.Atan),
	"ceil":  unary(math.Ceil),
	"cos":   unary(math.Cos),
	"cosh":  unary(math.Cosh),
	"exp":   unary(math.Exp),
	"floor": unary(math.Floor),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"round": unary(math.Round),
	"sin":   unary(math.Sin),
	"sinh":  unary(math.Sinh),
	"sqrt":  unary(math.Sqrt),
	"tan":   unary(math.Tan),
	"tanh":  unary(math.Tanh),
	"atan2": binary(math.Atan2),
	"fmod":  binary(math.Mod),
	"max":   binary(math.Max),
	"min":   binary(math.Min),
	"pow":   binary(math.Pow),
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func applyOperator(symbol string, args []float64) float64 {
	switch symbol {
	case "!":
		return truth(args[0] == 0)
	case "~":
		return -args[0]
	case "^":
		return math.Pow(args[0], args[1])
	case "*":
		return args[0] * args[1]
	case "/":
		return args[0] / args[1]
	case "%":
		return math.Mod(args[0], args[1])
	case "+":
		return args[0] + args[1]
	case "-":
		return args[0] - args[1]
	case "and":
		return truth(args[0] != 0 && args[1] != 0)
	case "or":
		return truth(args[0] != 0 || args[1] != 0)
	}
	return math.NaN()
}

// Program is a compiled postfix formula.
type Program struct {
	infix   string
	postfix []string
}

// Compile converts a formula into a Program with functions enabled.
func Compile(formula string) (*Program, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, fuzzyerr.Parse("", "", "formula is empty")
	}
	tokens, err := postfixTokens(formula, WithFunctions())
	if err != nil {
		return nil, err
	}
	p := &Program{infix: formula, postfix: tokens}
	// Dry run with every identifier bound, so arity errors surface at compile time.
	if _, err := p.eval(func(string) (float64, bool) { return 1, true }); err != nil {
		return nil, err
	}
	return p, nil
}

// String returns the formula the program was compiled from.
func (p *Program) String() string { return p.infix }

// Postfix returns the compiled token stream.
func (p *Program) Postfix() string { return strings.Join(p.postfix, " ") }

// Evaluate runs the program with the given variable bindings.
func (p *Program) Evaluate(vars map[string]float64) (float64, error) {
	return p.eval(func(name string) (float64, bool) {
		v, ok := vars[name]
		return v, ok
	})
}

func (p *Program) eval(lookup func(string) (float64, bool)) (float64, error) {
	var stack []float64
	popN := func(token string, n int) ([]float64, error) {
		if len(stack) < n {
			return nil, fuzzyerr.Parse(token, p.infix, "not enough operands")
		}
		args := make([]float64, n)
		copy(args, stack[len(stack)-n:])
		stack = stack[:len(stack)-n]
		return args, nil
	}

	for _, token := range p.postfix {
		if operator, ok := Operators[token]; ok {
			args, err := popN(token, operator.Arity)
			if err != nil {
				return math.NaN(), err
			}
			stack = append(stack, applyOperator(token, args))
			continue
		}
		if function, ok := Functions[token]; ok {
			args, err := popN(token, function.Arity)
			if err != nil {
				return math.NaN(), err
			}
			stack = append(stack, function.Eval(args...))
			continue
		}
		if value, err := strconv.ParseFloat(token, 64); err == nil {
			stack = append(stack, value)
			continue
		}
		value, ok := lookup(token)
		if !ok {
			return math.NaN(), fuzzyerr.Parse(token, p.infix, "unknown variable")
		}
		stack = append(stack, value)
	}

	if len(stack) != 1 {
		return math.NaN(), fuzzyerr.Parse("", p.infix, "formula does not reduce to a single value")
	}
	return stack[0], nil
}

// Evaluate compiles and runs formula once.
func Evaluate(formula string, vars map[string]float64) (float64, error) {
	p, err := Compile(formula)
	if err != nil {
		return math.NaN(), err
	}
	return p.Evaluate(vars)
}
