package runtime

import (
	"fmt"

	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/instruction"
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/method"
)

// ----------------------------------------------------------------------------
// Interpreter

// This section implements the message dispatch loop on top of the core.
//
// One step pops one message from the first agent (in spawn order) that has
// any pending, builds a frame over the agent's memory, context and the
// message, and runs the method evaluator to completion. The core itself is
// single-threaded and synchronous; serialising dispatch per agent is this
// loop's job, and running one message at a time serialises everything.
//
// A failing instruction aborts that method run only: the error is reported
// through the log, the message is destroyed and the agent survives with
// whatever the instructions before the failure already stored.
type Interpreter struct {
	log *logging.Log

	agency      *Agency
	methodology *Methodology
	methods     method.Evaluator
}

// Initializes and returns a brand new 'Interpreter' with a fresh agency and
// methodology wired into the instruction evaluator.
func NewInterpreter(log *logging.Log) *Interpreter {
	methodology := NewMethodology(log)
	agency := NewAgency(log, methodology)

	instructions := instruction.NewEvaluator(log, agency, methodology)
	return &Interpreter{
		log:         log,
		agency:      agency,
		methodology: methodology,
		methods:     method.NewEvaluator(instructions),
	}
}

// Returns the interpreter's agent registry.
func (i *Interpreter) Agency() *Agency {
	return i.agency
}

// Returns the interpreter's method registry.
func (i *Interpreter) Methodology() *Methodology {
	return i.methodology
}

// Dispatches the next pending message, reporting whether there was one.
func (i *Interpreter) ProcessNextMessage() bool {
	for _, agentID := range i.agency.IDs() {
		agent := i.agency.Agent(agentID)
		if agent == nil || agent.Pending() == 0 {
			continue
		}

		message := i.agency.dequeue(agent)
		frame := expression.NewFrame(agent.Memory(), agent.Context(), message)

		if err := i.methods.Evaluate(frame, agent.Method.AST()); err != nil {
			i.log.Error(fmt.Sprintf("agent %d, method '%s': %s", agent.ID, agent.Method.Name, err))
		}

		message.Destroy()
		return true
	}

	return false // No messages to process
}

// Dispatches messages until every mailbox is empty, returning how many were
// processed. New messages sent during processing are processed too.
func (i *Interpreter) ProcessAllMessages() int {
	processed := 0
	for i.ProcessNextMessage() {
		processed++
	}
	return processed
}
