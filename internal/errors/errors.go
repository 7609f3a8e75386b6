// Package errors renders lexer, parser, and runtime errors with shared
// source-context formatting: a file:line:column header, a window of
// surrounding source lines, and a caret under the offending column.
package errors

import (
	"fmt"
	"strings"

	"github.com/abraun/serpent/internal/token"
)

// CompilerError is a single diagnostic with position and source context.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// NewCompilerError constructs a CompilerError.
func NewCompilerError(pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(1)
}

// Format renders the error with contextLines of source on either side of
// the error line. A contextLines of 0 renders the header, the error line
// itself with its caret, and the message.
func (e *CompilerError) Format(contextLines int) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if e.Source != "" {
		lines := strings.Split(e.Source, "\n")
		start := e.Pos.Line - contextLines
		if start < 1 {
			start = 1
		}
		end := e.Pos.Line + contextLines
		if end > len(lines) {
			end = len(lines)
		}
		for n := start; n <= end; n++ {
			fmt.Fprintf(&sb, "%4d | %s\n", n, lines[n-1])
			if n == e.Pos.Line {
				col := e.Pos.Column
				if col < 1 {
					col = 1
				}
				sb.WriteString(strings.Repeat(" ", 7+col-1))
				sb.WriteString("^\n")
			}
		}
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// LexerError is a lexical error: an invalid character, unterminated
// string, malformed number, or indentation mismatch.
type LexerError struct {
	Message string
	Pos     token.Position
}

func (e *LexerError) Error() string { return fmt.Sprintf("lexer error at %s: %s", e.Pos, e.Message) }

// ParseError is a syntax error: an unexpected token, invalid assignment
// target, misplaced break/continue, or malformed suite.
type ParseError struct {
	Message string
	Pos     token.Position
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message) }

// RuntimeErrorKind classifies a RuntimeError per spec.
type RuntimeErrorKind string

const (
	NameError         RuntimeErrorKind = "NameError"
	TypeError         RuntimeErrorKind = "TypeError"
	ValueError        RuntimeErrorKind = "ValueError"
	IndexError        RuntimeErrorKind = "IndexError"
	KeyError          RuntimeErrorKind = "KeyError"
	AttributeError    RuntimeErrorKind = "AttributeError"
	ZeroDivisionError RuntimeErrorKind = "ZeroDivisionError"
	ArityError        RuntimeErrorKind = "ArityError"
	RecursionError    RuntimeErrorKind = "RecursionError"
	HashError         RuntimeErrorKind = "HashError"
)

// RuntimeError is an error raised while executing a program.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Pos     token.Position
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ToCompilerError renders a RuntimeError with source context for display.
func (e *RuntimeError) ToCompilerError(source, file string) *CompilerError {
	return NewCompilerError(e.Pos, e.Error(), source, file)
}

// NewRuntimeError constructs a RuntimeError of the given kind.
func NewRuntimeError(kind RuntimeErrorKind, pos token.Position, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}
