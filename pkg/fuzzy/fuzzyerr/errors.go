// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fuzzyerr classifies the failures of the fuzzy packages.
//
// Three classes exist:
//   - ParseError: malformed rule text. The rule involved is always left unloaded.
//   - ConfigurationError: a block or variable lacks an operator or defuzzifier it needs.
//     These are discovered lazily while evaluating, not while loading.
//   - EvaluationError: an unloaded rule was asked to compute or trigger.
//
// Every typed error unwraps to its sentinel, so callers can test the class with
// errors.Is(err, fuzzyerr.ErrParse) regardless of how deep it was wrapped.
package fuzzyerr

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per class.
var (
	ErrParse         = errors.New("parse error")
	ErrConfiguration = errors.New("configuration error")
	ErrEvaluation    = errors.New("evaluation error")
)

// ParseError reports rule text that could not be turned into an expression.
type ParseError struct {
	// Token is the offending token, empty when the text ended prematurely.
	Token string
	// Text is the portion of the input consumed before the failure.
	Text   string
	Reason string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := "[syntax error] " + e.Reason
	if e.Token != "" {
		msg += fmt.Sprintf(", but found <%s>", e.Token)
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" in <%s>", e.Text)
	}
	return msg
}

// Unwrap returns ErrParse
func (e *ParseError) Unwrap() error { return ErrParse }

// ConfigurationError reports a missing or invalid operator, defuzzifier or option.
type ConfigurationError struct {
	Component string
	Reason    string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Component == "" {
		return "[configuration error] " + e.Reason
	}
	return fmt.Sprintf("[configuration error] %s: %s", e.Component, e.Reason)
}

// Unwrap returns ErrConfiguration
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// EvaluationError reports an attempt to evaluate a rule that is not loaded.
type EvaluationError struct {
	Rule   string
	Reason string
}

// Error implements the error interface
func (e *EvaluationError) Error() string {
	if e.Rule == "" {
		return "[evaluation error] " + e.Reason
	}
	return fmt.Sprintf("[evaluation error] %s: <%s>", e.Reason, e.Rule)
}

// Unwrap returns ErrEvaluation
func (e *EvaluationError) Unwrap() error { return ErrEvaluation }

// Parse builds a ParseError.
func Parse(token, text, reason string) error {
	return &ParseError{Token: token, Text: text, Reason: reason}
}

// Configuration builds a ConfigurationError with a formatted reason.
func Configuration(component, format string, args ...any) error {
	return &ConfigurationError{Component: component, Reason: fmt.Sprintf(format, args...)}
}

// Evaluation builds an EvaluationError.
func Evaluation(rule, reason string) error {
	return &EvaluationError{Rule: rule, Reason: reason}
}

// IsParse reports whether err is, or wraps, a parse error.
func IsParse(err error) bool { return errors.Is(err, ErrParse) }

// IsConfiguration reports whether err is, or wraps, a configuration error.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsEvaluation reports whether err is, or wraps, an evaluation error.
func IsEvaluation(err error) bool { return errors.Is(err, ErrEvaluation) }
