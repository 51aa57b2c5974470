package expression_test

import (
	"errors"
	"reflect"
	"testing"

	"its-hmny.dev/agerun/pkg/expression"
)

func TestParseLiterals(t *testing.T) {
	test := func(source string, expected expression.Expression, fail bool) {
		expr, err := expression.NewParser(nil, source).Parse()
		// 'err' should be not nil only if 'fail' is passed as true from the caller
		if (err != nil) != fail {
			t.Fatalf("source %q: unexpected outcome, err: %v", source, err)
		}
		if err == nil && !reflect.DeepEqual(expr, expected) {
			t.Errorf("source %q: expected %+v, got %+v", source, expected, expr)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test("42", expression.LiteralInt{Value: 42}, false)
		test("-42", expression.LiteralInt{Value: -42}, false)
		test("  7  ", expression.LiteralInt{Value: 7}, false)
		test("3.14", expression.LiteralDouble{Value: 3.14}, false)
		test("-0.5", expression.LiteralDouble{Value: -0.5}, false)
		test("5.", expression.LiteralDouble{Value: 5}, false)
		test(`"hello"`, expression.LiteralString{Value: "hello"}, false)
		test(`""`, expression.LiteralString{Value: ""}, false)
		test(`"with {braces} and # marks"`, expression.LiteralString{Value: "with {braces} and # marks"}, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(`"unterminated`, nil, true) // Missing closing quote
		test("", nil, true)              // Nothing to parse
		test("-", nil, true)             // Sign without digits
		test(".5", nil, true)            // Doubles need a leading digit
		test("foobar", nil, true)        // Identifiers are not expressions
		test("12345678901", nil, true)   // Overflows the 32-bit integer tag
	})
}

func TestParseMemoryAccess(t *testing.T) {
	test := func(source string, expected expression.Expression, fail bool) {
		expr, err := expression.NewParser(nil, source).Parse()
		if (err != nil) != fail {
			t.Fatalf("source %q: unexpected outcome, err: %v", source, err)
		}
		if err == nil && !reflect.DeepEqual(expr, expected) {
			t.Errorf("source %q: expected %+v, got %+v", source, expected, expr)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		// A bare base accessor is a valid zero-segment access
		test("memory", expression.MemoryAccess{Base: expression.MemoryBase, Path: []string{}}, false)
		test("message", expression.MemoryAccess{Base: expression.MessageBase, Path: []string{}}, false)
		test("context", expression.MemoryAccess{Base: expression.ContextBase, Path: []string{}}, false)
		test("memory.user.name", expression.MemoryAccess{
			Base: expression.MemoryBase, Path: []string{"user", "name"},
		}, false)
		test("context._cfg.depth2", expression.MemoryAccess{
			Base: expression.ContextBase, Path: []string{"_cfg", "depth2"},
		}, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test("memoryx", nil, true)   // Base followed by an ident char is no access
		test("memory.", nil, true)   // Dot with no identifier after it
		test("memory.9a", nil, true) // Identifiers cannot start with a digit
	})
}

func TestParsePrecedence(t *testing.T) {
	test := func(source string, expected expression.Expression) {
		expr, err := expression.NewParser(nil, source).Parse()
		if err != nil {
			t.Fatalf("source %q: unexpected error: %v", source, err)
		}
		if !reflect.DeepEqual(expr, expected) {
			t.Errorf("source %q: expected %+v, got %+v", source, expected, expr)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		// Multiplication binds tighter than addition
		test("1 + 2 * 3", expression.BinaryOp{
			Op:   expression.Add,
			Left: expression.LiteralInt{Value: 1},
			Right: expression.BinaryOp{
				Op:    expression.Multiply,
				Left:  expression.LiteralInt{Value: 2},
				Right: expression.LiteralInt{Value: 3},
			},
		})

		// Parentheses override precedence
		test("(1 + 2) * 3", expression.BinaryOp{
			Op: expression.Multiply,
			Left: expression.BinaryOp{
				Op:    expression.Add,
				Left:  expression.LiteralInt{Value: 1},
				Right: expression.LiteralInt{Value: 2},
			},
			Right: expression.LiteralInt{Value: 3},
		})

		// Same-precedence operators associate left
		test("10 - 4 - 3", expression.BinaryOp{
			Op: expression.Subtract,
			Left: expression.BinaryOp{
				Op:    expression.Subtract,
				Left:  expression.LiteralInt{Value: 10},
				Right: expression.LiteralInt{Value: 4},
			},
			Right: expression.LiteralInt{Value: 3},
		})

		// Comparisons sit below arithmetic, equality below comparisons
		test("1 + 1 = 2", expression.BinaryOp{
			Op: expression.Equal,
			Left: expression.BinaryOp{
				Op:    expression.Add,
				Left:  expression.LiteralInt{Value: 1},
				Right: expression.LiteralInt{Value: 1},
			},
			Right: expression.LiteralInt{Value: 2},
		})
		test("memory.x <> 0", expression.BinaryOp{
			Op:    expression.NotEqual,
			Left:  expression.MemoryAccess{Base: expression.MemoryBase, Path: []string{"x"}},
			Right: expression.LiteralInt{Value: 0},
		})
		test("1 <= 2", expression.BinaryOp{
			Op:    expression.LessEq,
			Left:  expression.LiteralInt{Value: 1},
			Right: expression.LiteralInt{Value: 2},
		})
	})
}

func TestParseTrailingInput(t *testing.T) {
	test := func(source string, offset int) {
		_, err := expression.NewParser(nil, source).Parse()
		if err == nil {
			t.Fatalf("source %q: expected a failure", source)
		}

		var syntax *expression.SyntaxError
		if !errors.As(err, &syntax) {
			t.Fatalf("source %q: expected a *SyntaxError, got %T", source, err)
		}
		if syntax.Offset != offset {
			t.Errorf("source %q: expected offset %d, got %d", source, offset, syntax.Offset)
		}
	}

	t.Run("Invalid data", func(t *testing.T) {
		test("1 2", 2)        // Trailing literal after a complete expression
		test("1 + 2 )", 6)    // Stray closing paren
		test("(1 + 2", 6)     // Unclosed paren reports at its expected spot
		test(`"abc`, 4)       // Unterminated string reports at end of input
		test("memory.", 7)    // Missing identifier after the dot
	})
}
