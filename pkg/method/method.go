package method

import (
	"its-hmny.dev/agerun/pkg/instruction"
	"its-hmny.dev/agerun/pkg/logging"
)

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about AgeRun methods.
//
// A method is a named, versioned sequence of instructions: the unit agents
// are bound to and the unit the methodology registers, resolves and
// deprecates. Its AST is just the ordered instruction list, lines of the
// source are 1-indexed when reporting parse failures.

// A method AST is a linear list of instruction nodes, executed in order.
type AST []instruction.Instruction

// A named, versioned method together with its source and parsed AST.
//
// The AST is produced once at construction: a method that doesn't parse is
// never materialized, which is what lets the methodology reject bad
// 'compile' calls up front.
type Method struct {
	Name    string // The registered method name
	Version string // The registered version string (opaque to the core)
	Source  string // The original source text, kept for persistence

	ast AST // The parsed instruction list
}

// Initializes and returns a brand new 'Method', parsing 'source' eagerly.
// A source that fails to parse yields the parse error and no method.
func New(log *logging.Log, name, version, source string) (*Method, error) {
	parser := NewParser(log)
	ast, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	return &Method{Name: name, Version: version, Source: source, ast: ast}, nil
}

// Returns the parsed instruction list.
func (m *Method) AST() AST {
	return m.ast
}
