package instruction_test

import (
	"errors"
	"reflect"
	"testing"

	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/instruction"
)

func TestParseAssignment(t *testing.T) {
	parser := instruction.NewParser(nil)

	test := func(line string, expected instruction.Instruction, fail bool) {
		parsed, err := parser.Parse(line)
		// 'err' should be not nil only if 'fail' is passed as true from the caller
		if (err != nil) != fail {
			t.Fatalf("line %q: unexpected outcome, err: %v", line, err)
		}
		if err == nil && !reflect.DeepEqual(parsed, expected) {
			t.Errorf("line %q: expected %+v, got %+v", line, expected, parsed)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test("memory.x := 42", instruction.Assignment{
			Path:       "memory.x",
			Expression: expression.LiteralInt{Value: 42},
		}, false)

		test("memory.y := memory.x + 1", instruction.Assignment{
			Path: "memory.y",
			Expression: expression.BinaryOp{
				Op:    expression.Add,
				Left:  expression.MemoryAccess{Base: expression.MemoryBase, Path: []string{"x"}},
				Right: expression.LiteralInt{Value: 1},
			},
		}, false)

		test(`memory.greeting := "hi := there"`, instruction.Assignment{
			Path:       "memory.greeting",
			Expression: expression.LiteralString{Value: "hi := there"},
		}, false)

		test("memory.deep.slot := message", instruction.Assignment{
			Path:       "memory.deep.slot",
			Expression: expression.MemoryAccess{Base: expression.MessageBase, Path: []string{}},
		}, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test("context.x := 1", nil, true)   // Only memory is writable
		test("memoryx.y := 1", nil, true)   // Segment-wise prefix check
		test("memory := 1", nil, true)      // The root itself is not a target
		test("memory. := 1", nil, true)     // Empty key under the root
		test("memory.x := ", nil, true)     // Missing right-hand side
		test("memory.x := foo", nil, true)  // Identifiers are not expressions
		test("justwords", nil, true)        // Neither assignment nor builtin
	})
}

func TestParseFunctionCalls(t *testing.T) {
	parser := instruction.NewParser(nil)

	test := func(line string, expected instruction.Instruction, fail bool) {
		parsed, err := parser.Parse(line)
		if (err != nil) != fail {
			t.Fatalf("line %q: unexpected outcome, err: %v", line, err)
		}
		if err == nil && !reflect.DeepEqual(parsed, expected) {
			t.Errorf("line %q: expected %+v, got %+v", line, expected, parsed)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(`send(1, "ping")`, instruction.FunctionCall{
			Kind: instruction.SendKind, Name: "send",
			Args: []expression.Expression{
				expression.LiteralInt{Value: 1},
				expression.LiteralString{Value: "ping"},
			},
		}, false)

		test(`memory.ok := send(memory.peer, message)`, instruction.FunctionCall{
			Kind: instruction.SendKind, Name: "send",
			Args: []expression.Expression{
				expression.MemoryAccess{Base: expression.MemoryBase, Path: []string{"peer"}},
				expression.MemoryAccess{Base: expression.MessageBase, Path: []string{}},
			},
			ResultPath: "memory.ok",
		}, false)

		// Nested parens and commas inside quotes don't split arguments
		test(`memory.r := if((1 + 2) * 3 > 8, "a,b", "c")`, instruction.FunctionCall{
			Kind: instruction.IfKind, Name: "if",
			Args: []expression.Expression{
				expression.BinaryOp{
					Op: expression.Greater,
					Left: expression.BinaryOp{
						Op: expression.Multiply,
						Left: expression.BinaryOp{
							Op:    expression.Add,
							Left:  expression.LiteralInt{Value: 1},
							Right: expression.LiteralInt{Value: 2},
						},
						Right: expression.LiteralInt{Value: 3},
					},
					Right: expression.LiteralInt{Value: 8},
				},
				expression.LiteralString{Value: "a,b"},
				expression.LiteralString{Value: "c"},
			},
			ResultPath: "memory.r",
		}, false)

		test(`compile("echo", "send(1, message)", "1.0.0")`, instruction.FunctionCall{
			Kind: instruction.CompileKind, Name: "compile",
			Args: []expression.Expression{
				expression.LiteralString{Value: "echo"},
				expression.LiteralString{Value: "send(1, message)"},
				expression.LiteralString{Value: "1.0.0"},
			},
		}, false)

		test(`deprecate("echo", "1.0.0")`, instruction.FunctionCall{
			Kind: instruction.DeprecateKind, Name: "deprecate",
			Args: []expression.Expression{
				expression.LiteralString{Value: "echo"},
				expression.LiteralString{Value: "1.0.0"},
			},
		}, false)

		test("destroy(7)", instruction.FunctionCall{
			Kind: instruction.DestroyKind, Name: "destroy",
			Args: []expression.Expression{expression.LiteralInt{Value: 7}},
		}, false)

		test(`parse("n={n}", message)`, instruction.FunctionCall{
			Kind: instruction.ParseKind, Name: "parse",
			Args: []expression.Expression{
				expression.LiteralString{Value: "n={n}"},
				expression.MemoryAccess{Base: expression.MessageBase, Path: []string{}},
			},
		}, false)

		test(`build("Hi {who}", memory.vals)`, instruction.FunctionCall{
			Kind: instruction.BuildKind, Name: "build",
			Args: []expression.Expression{
				expression.LiteralString{Value: "Hi {who}"},
				expression.MemoryAccess{Base: expression.MemoryBase, Path: []string{"vals"}},
			},
		}, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(`send(1, "ping") trailing`, nil, true) // Trailing input after the call
		test(`send(1, )`, nil, true)                // Empty argument slot
		test(`send(1, "unterminated`, nil, true)    // Unclosed quote swallows the paren
		test(`unknown(1)`, nil, true)               // Not a builtin
	})
}

func TestParseCreateOptionalContext(t *testing.T) {
	parser := instruction.NewParser(nil)

	test := func(line string, argCount int, fail bool) {
		parsed, err := parser.Parse(line)
		if (err != nil) != fail {
			t.Fatalf("line %q: unexpected outcome, err: %v", line, err)
		}
		if err == nil {
			call, ok := parsed.(instruction.FunctionCall)
			if !ok || call.Kind != instruction.CreateKind || len(call.Args) != argCount {
				t.Errorf("line %q: expected a create call with %d args, got %+v", line, argCount, parsed)
			}
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		// The context argument is optional: two and three arguments both parse
		test(`create("echo", "1.0.0")`, 2, false)
		test(`memory.id := create("echo", "1.0.0", memory.cfg)`, 3, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(`create("echo")`, 0, true)
		test(`create("echo", "1.0.0", memory.cfg, 4)`, 0, true)
	})
}

func TestParseArityAndSyntaxErrors(t *testing.T) {
	parser := instruction.NewParser(nil)

	t.Run("Invalid data", func(t *testing.T) {
		// Too many arguments is an arity error, not a syntax error
		_, err := parser.Parse("exit(1, 2)")
		var arity *instruction.ArityError
		if !errors.As(err, &arity) {
			t.Fatalf("expected an *ArityError, got %v", err)
		}
		if arity.Name != "exit" || arity.Got != 2 {
			t.Errorf("unexpected arity error contents: %+v", arity)
		}

		// A missing '(' is a syntax error pointing at the call site
		_, err = parser.Parse("exit")
		var syntax *expression.SyntaxError
		if !errors.As(err, &syntax) {
			t.Fatalf("expected a *SyntaxError, got %v", err)
		}
		if syntax.Message != "expected '(' after 'exit'" {
			t.Errorf("unexpected message: %q", syntax.Message)
		}

		// Zero arguments on a one-argument builtin is an arity error too
		_, err = parser.Parse("exit()")
		if !errors.As(err, &arity) {
			t.Fatalf("expected an *ArityError, got %v", err)
		}
		if arity.Got != 0 {
			t.Errorf("expected 0 extracted arguments, got %d", arity.Got)
		}
	})
}

func TestParseErrorOffsets(t *testing.T) {
	parser := instruction.NewParser(nil)

	test := func(line string, offset int) {
		_, err := parser.Parse(line)
		var syntax *expression.SyntaxError
		if !errors.As(err, &syntax) {
			t.Fatalf("line %q: expected a *SyntaxError, got %v", line, err)
		}
		if syntax.Offset != offset {
			t.Errorf("line %q: expected offset %d, got %d", line, offset, syntax.Offset)
		}
	}

	t.Run("Invalid data", func(t *testing.T) {
		// An unterminated quote swallows the closing paren, the error points
		// at the end of the line where ')' was still expected
		test(`send(1, "open)`, 14)
		// Offsets of argument sub-expressions are line-relative
		test("memory.x := 1 1", 14) // Trailing token in the right-hand side
	})
}
