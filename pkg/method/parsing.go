package method

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"its-hmny.dev/agerun/pkg/instruction"
	"its-hmny.dev/agerun/pkg/logging"
)

// ----------------------------------------------------------------------------
// Parse errors

// A method parse failure, tied to the 1-based line the bad instruction sat
// on. '\n', '\r' and '\r\n' each count as a single line separator.
type ParseError struct {
	Line int   // 1-based line index within the (trimmed) method source
	Err  error // The underlying instruction parse failure
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ----------------------------------------------------------------------------
// Method Parser

// This section defines the Parser for whole AgeRun methods.
//
// The source is trimmed, split into lines and each line is dispatched to the
// instruction parser: empty lines and '#' comment lines are skipped, inline
// '# …' comments outside double quotes are stripped. The first instruction
// that fails to parse aborts the whole method with its line number attached.
//
// Feature flag (as env var):
// - AGERUN_PRINT_AST: dumps the parsed method AST on stdout via go-spew
type Parser struct {
	log          *logging.Log       // Borrowed error sink (nil disables reporting)
	instructions instruction.Parser // The per-line instruction parser
}

// Initializes and returns to the caller a brand new 'Parser' struct.
func NewParser(log *logging.Log) Parser {
	return Parser{log: log, instructions: instruction.NewParser(log)}
}

// Parser entrypoint: parses a complete method source into its AST.
func (p Parser) Parse(source string) (AST, error) {
	ast := AST{}

	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return ast, nil
	}

	line, start := 1, 0
	for i := 0; i <= len(trimmed); i++ {
		if i < len(trimmed) && trimmed[i] != '\n' && trimmed[i] != '\r' {
			continue
		}

		inst, skipped, err := p.parseLine(trimmed[start:i])
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if !skipped {
			ast = append(ast, inst)
		}

		if i == len(trimmed) {
			break
		}
		if trimmed[i] == '\r' && i+1 < len(trimmed) && trimmed[i+1] == '\n' {
			i++ // '\r\n' counts as one separator
		}
		line++
		start = i + 1
	}

	// Feature flag: dumps the in-memory AST for inspection during debugging
	if os.Getenv("AGERUN_PRINT_AST") != "" {
		spew.Dump(ast)
	}

	return ast, nil
}

// Parses a single line; the boolean reports a skipped line (blank or
// comment-only) that contributes no instruction.
func (p Parser) parseLine(raw string) (instruction.Instruction, bool, error) {
	text := strings.TrimSpace(raw)

	if text == "" || text[0] == '#' {
		return nil, true, nil
	}

	// Strip an inline '# …' comment: the first '#' outside a double-quoted
	// string (a quote preceded by '\' doesn't toggle) starts the comment.
	inQuotes := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' && (i == 0 || text[i-1] != '\\') {
			inQuotes = !inQuotes
		} else if c == '#' && !inQuotes {
			text = strings.TrimSpace(text[:i])
			break
		}
	}
	if text == "" {
		return nil, true, nil
	}

	inst, err := p.instructions.Parse(text)
	if err != nil {
		return nil, false, err
	}
	return inst, false, nil
}
