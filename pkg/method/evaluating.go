package method

import (
	"fmt"

	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/instruction"
)

// ----------------------------------------------------------------------------
// Method Evaluator

// This section defines the Evaluator for whole AgeRun methods.
//
// Execution is single-threaded and synchronous: the instruction list is
// visited in source order with no preemption or suspension points, and the
// first failing instruction aborts the whole run. The enclosing scheduler
// decides what to do with a failed run; the agent's memory keeps whatever
// the instructions before the failure already stored.
type Evaluator struct {
	instructions *instruction.Evaluator // Evaluates the individual nodes
}

// Initializes and returns to the caller a brand new 'Evaluator' struct.
// Requires the argument instruction evaluator 'inst' to be non-nil.
func NewEvaluator(inst *instruction.Evaluator) Evaluator {
	return Evaluator{instructions: inst}
}

// Evaluator entrypoint: runs every instruction of the AST against the frame,
// in order, aborting on the first failure.
func (e Evaluator) Evaluate(frame expression.Frame, ast AST) error {
	for i, inst := range ast {
		if err := e.instructions.Evaluate(frame, inst); err != nil {
			return fmt.Errorf("instruction %d: %w", i+1, err)
		}
	}
	return nil
}
