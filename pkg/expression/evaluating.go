package expression

import (
	"fmt"
	"strings"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/logging"
)

// ----------------------------------------------------------------------------
// Frames

// A Frame is the per-invocation context an expression is evaluated against.
//
// It exposes the three slots the language can read: the agent's mutable
// memory map, the read-only context map and the message being processed.
// The frame owns none of them, it carries borrowed references only.
type Frame struct {
	Memory  *data.Value // The agent's mutable memory map (borrowed)
	Context *data.Value // The read-only configuration map (borrowed)
	Message *data.Value // The value being processed (borrowed, may be any tag)
}

// Initializes and returns to the caller a brand new 'Frame' struct.
// Any slot may be nil, accessing a nil slot then fails at evaluation time.
func NewFrame(memory, context, message *data.Value) Frame {
	return Frame{Memory: memory, Context: context, Message: message}
}

// ----------------------------------------------------------------------------
// Expression Evaluator

// This section defines the Evaluator for AgeRun expressions.
//
// Evaluation walks the expression tree in depth-first order and produces a
// 'data.Value' with a well-defined ownership disposition: literals and binary
// operations yield fresh unowned values, memory accesses yield a borrow of
// the storage they resolved to (callers that need the value past the borrow's
// validity must hold or deep-copy it).
type Evaluator struct {
	log *logging.Log // Borrowed error sink (nil disables reporting)
}

// Initializes and returns to the caller a brand new 'Evaluator' struct.
func NewEvaluator(log *logging.Log) Evaluator {
	return Evaluator{log: log}
}

// Evaluator entrypoint: dispatches on the node kind and returns the produced
// value. Failure of any sub-expression aborts the whole evaluation.
func (e *Evaluator) Evaluate(frame Frame, expr Expression) (*data.Value, error) {
	switch node := expr.(type) {
	case LiteralInt:
		return data.NewInteger(node.Value), nil
	case LiteralDouble:
		return data.NewDouble(node.Value), nil
	case LiteralString:
		return data.NewString(node.Value), nil
	case MemoryAccess:
		return e.evaluateMemoryAccess(frame, node)
	case BinaryOp:
		return e.evaluateBinaryOp(frame, node)
	}

	return nil, e.fail(fmt.Sprintf("unrecognized expression node %T", expr))
}

// Resolves a memory access against the frame. The result is a borrow.
func (e *Evaluator) evaluateMemoryAccess(frame Frame, node MemoryAccess) (*data.Value, error) {
	var base *data.Value
	switch node.Base {
	case MemoryBase:
		base = frame.Memory
	case MessageBase:
		base = frame.Message
	case ContextBase:
		base = frame.Context
	default:
		return nil, e.fail(fmt.Sprintf("unrecognized accessor base '%s'", node.Base))
	}

	if base == nil {
		return nil, e.fail(fmt.Sprintf("no '%s' available in the current frame", node.Base))
	}

	// A non-map message is a legal scalar: an empty path yields the message
	// itself, a non-empty path cannot be applied to it.
	if len(node.Path) == 0 {
		return base, nil
	}
	if base.Kind() != data.Map {
		return nil, e.fail(fmt.Sprintf("'%s' is not a map, cannot apply path", node.Base))
	}

	path := strings.Join(node.Path, ".")
	value := base.Get(path)
	if value == nil {
		return nil, e.fail(fmt.Sprintf("path '%s.%s' not found", node.Base, path))
	}
	return value, nil
}

// Evaluates both operands and applies the operator. Arithmetic requires both
// operands to share the same numeric tag, comparisons require same-tag
// operands; results of comparisons are integer 1 (true) or 0 (false).
func (e *Evaluator) evaluateBinaryOp(frame Frame, node BinaryOp) (*data.Value, error) {
	left, err := e.Evaluate(frame, node.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(frame, node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case Add, Subtract, Multiply, Divide:
		return e.applyArithmetic(node.Op, left, right)
	case Equal, NotEqual, Less, LessEq, Greater, GreaterEq:
		return e.applyComparison(node.Op, left, right)
	}

	return nil, e.fail(fmt.Sprintf("unrecognized binary operator '%s'", node.Op))
}

func (e *Evaluator) applyArithmetic(op Operator, left, right *data.Value) (*data.Value, error) {
	// Integer arithmetic wraps silently on overflow (two's complement).
	if left.Kind() == data.Integer && right.Kind() == data.Integer {
		l, r := left.Integer(), right.Integer()
		switch op {
		case Add:
			return data.NewInteger(l + r), nil
		case Subtract:
			return data.NewInteger(l - r), nil
		case Multiply:
			return data.NewInteger(l * r), nil
		case Divide:
			if r == 0 {
				return nil, e.fail("division by zero")
			}
			return data.NewInteger(l / r), nil
		}
	}

	if left.Kind() == data.Double && right.Kind() == data.Double {
		l, r := left.Double(), right.Double()
		switch op {
		case Add:
			return data.NewDouble(l + r), nil
		case Subtract:
			return data.NewDouble(l - r), nil
		case Multiply:
			return data.NewDouble(l * r), nil
		case Divide:
			if r == 0 {
				return nil, e.fail("division by zero")
			}
			return data.NewDouble(l / r), nil
		}
	}

	return nil, e.fail(fmt.Sprintf(
		"operator '%s' requires two integers or two doubles, got %s and %s",
		op, left.Kind(), right.Kind(),
	))
}

func (e *Evaluator) applyComparison(op Operator, left, right *data.Value) (*data.Value, error) {
	if left.Kind() != right.Kind() {
		return nil, e.fail(fmt.Sprintf(
			"operator '%s' requires same-tag operands, got %s and %s",
			op, left.Kind(), right.Kind(),
		))
	}

	asResult := func(outcome bool) *data.Value {
		if outcome {
			return data.NewInteger(1)
		}
		return data.NewInteger(0)
	}

	switch left.Kind() {
	case data.Integer:
		return asResult(compareOrdered(op, left.Integer(), right.Integer())), nil
	case data.Double:
		return asResult(compareOrdered(op, left.Double(), right.Double())), nil
	case data.String:
		// Lexicographic byte order, which is what Go string comparison does.
		return asResult(compareOrdered(op, left.String(), right.String())), nil

	case data.List, data.Map:
		// Equality on collections is reference identity, there is no
		// structural equality and no ordering.
		switch op {
		case Equal:
			return asResult(left == right), nil
		case NotEqual:
			return asResult(left != right), nil
		}
		return nil, e.fail(fmt.Sprintf("operator '%s' is not defined on %s values", op, left.Kind()))
	}

	return nil, e.fail(fmt.Sprintf("operator '%s' is not defined on %s values", op, left.Kind()))
}

func compareOrdered[T int32 | float64 | string](op Operator, l, r T) bool {
	switch op {
	case Equal:
		return l == r
	case NotEqual:
		return l != r
	case Less:
		return l < r
	case LessEq:
		return l <= r
	case Greater:
		return l > r
	case GreaterEq:
		return l >= r
	}
	return false
}

// Logs and materializes an evaluation error.
func (e *Evaluator) fail(msg string) error {
	e.log.Error(msg)
	return fmt.Errorf("%s", msg)
}
