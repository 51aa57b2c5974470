package instruction

import (
	"its-hmny.dev/agerun/pkg/expression"
)

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about AgeRun instructions.
//
// An instruction is a single executable form within a method: either an
// assignment into the agent's memory or one of nine builtin function calls.
// We declare a shared 'Instruction' interface for both shapes, then we define
// the concrete nodes w/ the data required to evaluate them. Arguments are
// stored exclusively as parsed expression trees, never as raw strings.

// Just used to put together assignments and function calls in the same datatype.
type Instruction interface{}

// ----------------------------------------------------------------------------
// Assignments

// In memory representation of an assignment instruction.
//
// The left-hand side must be a 'memory.…' path (the agent may only write its
// own memory); the right-hand side is an arbitrary expression whose value is
// stored under that path, the memory map taking ownership.
type Assignment struct {
	Path       string                // The full target path, always starting with "memory."
	Expression expression.Expression // The right-hand side to be evaluated and stored
}

// ----------------------------------------------------------------------------
// Function calls

// In memory representation of a builtin function call instruction.
//
// Each kind has a fixed expected argument count enforced by its parser
// ('create' accepts two or three, the two-argument form leaves the context
// argument out and the evaluator passes a nil context to the registry).
// An optional 'memory.… :=' prefix captures where the call's result should
// be stored; without it the result is discarded after the effect.
type FunctionCall struct {
	Kind Kind   // The builtin being invoked, drives evaluator dispatch
	Name string // The spelled-out function name as it appeared in source

	Args       []expression.Expression // The argument expressions, in call order
	ResultPath string                  // The "memory.…" target for the result ("" = none)
}

type Kind string // Enum to manage the instruction kinds allowed in a method

const (
	AssignmentKind Kind = "assignment" // memory.x := <expression>

	SendKind      Kind = "send"      // send(agent_id, message)
	IfKind        Kind = "if"        // if(condition, then_value, else_value)
	CompileKind   Kind = "compile"   // compile(method_name, body, version)
	CreateKind    Kind = "create"    // create(method_name, version[, context])
	DestroyKind   Kind = "destroy"   // destroy(agent_id)
	DeprecateKind Kind = "deprecate" // deprecate(method_name, version)
	ExitKind      Kind = "exit"      // exit(agent_id)
	ParseKind     Kind = "parse"     // parse(template, input)
	BuildKind     Kind = "build"     // build(template, values)
)
