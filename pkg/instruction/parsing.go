package instruction

import (
	"fmt"
	"strings"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/logging"
)

// ----------------------------------------------------------------------------
// Arity errors

// A function call with the wrong number of arguments. Kept distinct from
// '*expression.SyntaxError' so callers can tell a malformed line from a
// well-formed call with a bad argument count.
type ArityError struct {
	Name     string // The builtin whose call site is wrong
	Expected string // Human readable expected count ("1", "2 or 3", ...)
	Got      int    // The number of arguments actually found
	Offset   int    // Byte offset of the call site inside the line
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("'%s' expects %s argument(s), got %d", e.Name, e.Expected, e.Got)
}

// ----------------------------------------------------------------------------
// Instruction Parser

// This section defines the Parser for single AgeRun instructions.
//
// The facade 'Parse' decides which shape the line has: the presence of ':='
// outside quotes marks the target of an assignment or of a function result,
// and a leading keyword scan picks the builtin. Each builtin then has its
// own parser sharing one skeleton: match the keyword, open paren, extract
// the comma-separated raw arguments (honoring quotes and nested parens),
// close paren, reject trailing input, and re-parse every raw argument into
// an expression tree. Failures free nothing explicitly (the runtime owns
// memory) but always report through the borrowed log sink.
type Parser struct {
	log *logging.Log // Borrowed error sink (nil disables reporting)
}

// Initializes and returns to the caller a brand new 'Parser' struct.
func NewParser(log *logging.Log) Parser {
	return Parser{log: log}
}

// Parser entrypoint: parses one instruction line into its AST node.
func (p Parser) Parse(line string) (Instruction, error) {
	scanStart := skipWhitespace(line, 0)

	// Locate ':=' outside quotes; it splits target from right-hand side.
	resultPath := ""
	assign := findAssignment(line)
	if assign >= 0 {
		target := strings.TrimSpace(line[:assign])
		targetPath := data.NewVariablePath(target)
		if !targetPath.IsMemory() {
			return nil, p.fail("assignment target must be a 'memory.…' path", 0)
		}
		if _, ok := targetPath.SuffixAfterRoot(); !ok {
			return nil, p.fail("assignment target must name a key under 'memory'", 0)
		}

		resultPath = target
		scanStart = skipWhitespace(line, assign+2)
	}

	// Leading keyword scan: a known builtin name dispatches to the matching
	// per-kind parser, which then requires '(' (possibly after whitespace).
	keyword := scanIdentifier(line, scanStart)
	kind, known := keywords[keyword]
	if known {
		return p.parseByKind(kind, line, scanStart+len(keyword), resultPath)
	}

	if assign >= 0 {
		return p.parseAssignment(line, resultPath, scanStart)
	}
	return nil, p.fail(fmt.Sprintf("unrecognized instruction '%s'", scanIdentifier(line, scanStart)), scanStart)
}

// Maps source keywords to instruction kinds; dispatch is case-sensitive.
var keywords = map[string]Kind{
	"send":      SendKind,
	"if":        IfKind,
	"compile":   CompileKind,
	"create":    CreateKind,
	"destroy":   DestroyKind,
	"deprecate": DeprecateKind,
	"exit":      ExitKind,
	"parse":     ParseKind,
	"build":     BuildKind,
}

// ----------------------------------------------------------------------------
// Per-kind parsers

// Specialized parser for plain assignments ('memory.x := <expression>').
func (p Parser) parseAssignment(line string, target string, rhsStart int) (Instruction, error) {
	rhs := line[rhsStart:]
	expr, err := expression.NewParser(p.log, rhs).Parse()
	if err != nil {
		return nil, shiftOffset(err, rhsStart)
	}

	return Assignment{Path: target, Expression: expr}, nil
}

func (p Parser) parseByKind(kind Kind, line string, pos int, resultPath string) (Instruction, error) {
	switch kind {
	case SendKind:
		return p.parseCall(SendKind, "send", line, pos, resultPath, 2, 2)
	case IfKind:
		return p.parseCall(IfKind, "if", line, pos, resultPath, 3, 3)
	case CompileKind:
		return p.parseCall(CompileKind, "compile", line, pos, resultPath, 3, 3)
	case CreateKind:
		// The context argument is optional: the two-argument form leaves it
		// out and the evaluator passes a nil context to the registry.
		return p.parseCall(CreateKind, "create", line, pos, resultPath, 2, 3)
	case DestroyKind:
		return p.parseCall(DestroyKind, "destroy", line, pos, resultPath, 1, 1)
	case DeprecateKind:
		return p.parseCall(DeprecateKind, "deprecate", line, pos, resultPath, 2, 2)
	case ExitKind:
		return p.parseCall(ExitKind, "exit", line, pos, resultPath, 1, 1)
	case ParseKind:
		return p.parseCall(ParseKind, "parse", line, pos, resultPath, 2, 2)
	case BuildKind:
		return p.parseCall(BuildKind, "build", line, pos, resultPath, 2, 2)
	}

	return nil, p.fail(fmt.Sprintf("unrecognized instruction kind '%s'", kind), pos)
}

// Shared skeleton for every function-call parser. 'pos' points right after
// the keyword; 'minArgs'/'maxArgs' bound the accepted argument count.
func (p Parser) parseCall(kind Kind, name, line string, pos int, resultPath string, minArgs, maxArgs int) (Instruction, error) {
	callSite := skipWhitespace(line, pos)
	if callSite >= len(line) || line[callSite] != '(' {
		return nil, p.fail(fmt.Sprintf("expected '(' after '%s'", name), callSite)
	}

	raws, offsets, end, err := p.extractArguments(line, callSite+1)
	if err != nil {
		return nil, err
	}

	trailing := skipWhitespace(line, end)
	if trailing < len(line) {
		return nil, p.fail("unexpected characters after instruction", trailing)
	}

	if len(raws) < minArgs || len(raws) > maxArgs {
		expected := fmt.Sprint(minArgs)
		if maxArgs != minArgs {
			expected = fmt.Sprintf("%d or %d", minArgs, maxArgs)
		}
		arity := &ArityError{Name: name, Expected: expected, Got: len(raws), Offset: callSite}
		p.log.ErrorAt(arity.Error(), callSite)
		return nil, arity
	}

	args := make([]expression.Expression, 0, len(raws))
	for i, raw := range raws {
		expr, err := expression.NewParser(p.log, raw).Parse()
		if err != nil {
			return nil, shiftOffset(err, offsets[i])
		}
		args = append(args, expr)
	}

	return FunctionCall{Kind: kind, Name: name, Args: args, ResultPath: resultPath}, nil
}

// ----------------------------------------------------------------------------
// Argument extraction

// Extracts the raw comma-separated arguments between 'pos' (just past the
// opening paren) and the matching close paren. Commas inside nested parens
// or double-quoted strings (where '\"' escapes a quote) do not split.
// Returns the raw argument texts, the offset each one starts at, and the
// position right after the closing paren.
func (p Parser) extractArguments(line string, pos int) ([]string, []int, int, error) {
	raws, offsets := []string{}, []int{}

	for {
		pos = skipWhitespace(line, pos)
		start := pos

		depth, inQuotes := 0, false
		for pos < len(line) {
			c := line[pos]
			if c == '"' && (pos == 0 || line[pos-1] != '\\') {
				inQuotes = !inQuotes
			} else if !inQuotes {
				if c == '(' {
					depth++
				} else if c == ')' {
					if depth == 0 {
						break
					}
					depth--
				} else if c == ',' && depth == 0 {
					break
				}
			}
			pos++
		}

		if pos >= len(line) {
			return nil, nil, 0, p.fail("expected ')' to close the argument list", pos)
		}

		raw := strings.TrimRight(line[start:pos], " \t")
		if raw == "" {
			// A bare '()' is an empty argument list; an empty slot between
			// commas is malformed.
			if line[pos] == ')' && len(raws) == 0 {
				return raws, offsets, pos + 1, nil
			}
			return nil, nil, 0, p.fail("expected argument", start)
		}

		raws = append(raws, raw)
		offsets = append(offsets, start)

		if line[pos] == ')' {
			return raws, offsets, pos + 1, nil
		}
		pos++ // Skip the comma and loop for the next argument
	}
}

// ----------------------------------------------------------------------------
// Low level helpers

// Finds the position of ':=' outside double quotes, -1 when absent.
func findAssignment(line string) int {
	inQuotes := false
	for i := 0; i+1 < len(line); i++ {
		c := line[i]
		if c == '"' && (i == 0 || line[i-1] != '\\') {
			inQuotes = !inQuotes
		} else if !inQuotes && c == ':' && line[i+1] == '=' {
			return i
		}
	}
	return -1
}

// Reads the identifier starting at 'pos' ("" when none starts there).
func scanIdentifier(line string, pos int) string {
	end := pos
	for end < len(line) {
		c := line[end]
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && !(end > pos && isDigit) {
			break
		}
		end++
	}
	return line[pos:end]
}

func skipWhitespace(line string, pos int) int {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	return pos
}

// Adds 'base' to the offset of a syntax error raised while parsing a
// substring of the instruction line, so offsets stay line-relative.
func shiftOffset(err error, base int) error {
	if syntax, ok := err.(*expression.SyntaxError); ok {
		return &expression.SyntaxError{Message: syntax.Message, Offset: syntax.Offset + base}
	}
	return err
}

// Logs and materializes a syntax error at 'offset'.
func (p Parser) fail(msg string, offset int) error {
	p.log.ErrorAt(msg, offset)
	return &expression.SyntaxError{Message: msg, Offset: offset}
}
