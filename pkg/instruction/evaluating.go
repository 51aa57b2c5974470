package instruction

import (
	"fmt"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/logging"
)

// ----------------------------------------------------------------------------
// Collaborator contracts

// The agent registry the 'send', 'create', 'destroy' and 'exit' evaluators
// delegate to. The core transfers ownership of the message and context
// values into the registry on success.
type AgentRegistry interface {
	// Enqueues 'message' on the agent's mailbox, false for an unknown agent.
	Enqueue(agentID int32, message *data.Value) bool
	// Spawns an agent bound to (methodName, version); a nil context means an
	// empty one. Returns the new agent id, 0 on failure.
	Spawn(methodName, version string, context *data.Value) int32
	// Kills the agent, false for an unknown agent.
	Kill(agentID int32) bool
}

// The method registry the 'compile' and 'deprecate' evaluators delegate to.
type Methodology interface {
	Compile(name, body, version string) bool
	Deprecate(name, version string) bool
}

// ----------------------------------------------------------------------------
// Instruction Evaluator

// This section defines the Evaluator for single AgeRun instructions.
//
// Every per-kind evaluator follows the same protocol: check the node kind,
// check the argument count, evaluate each argument (taking ownership of the
// produced value, which means deep-copying borrows that came from memory
// accesses), validate the argument tags, perform the effect, and finally
// either store the result under the node's result path or destroy it.
type Evaluator struct {
	log         *logging.Log         // Borrowed error sink (nil disables reporting)
	expressions expression.Evaluator // Evaluates the argument expression trees

	registry    AgentRegistry // External collaborator for agent lifecycle (may be nil)
	methodology Methodology   // External collaborator for method lifecycle (may be nil)
}

// Initializes and returns to the caller a brand new 'Evaluator' struct.
// Both collaborators may be nil: the instructions depending on them then
// fail at evaluation time instead of construction time.
func NewEvaluator(log *logging.Log, registry AgentRegistry, methodology Methodology) *Evaluator {
	return &Evaluator{
		log:         log,
		expressions: expression.NewEvaluator(log),
		registry:    registry,
		methodology: methodology,
	}
}

// Evaluator entrypoint: dispatches on the node shape and kind.
func (e *Evaluator) Evaluate(frame expression.Frame, inst Instruction) error {
	switch node := inst.(type) {
	case Assignment:
		return e.evaluateAssignment(frame, node)

	case FunctionCall:
		switch node.Kind {
		case SendKind:
			return e.evaluateSend(frame, node)
		case IfKind:
			return e.evaluateIf(frame, node)
		case CompileKind:
			return e.evaluateCompile(frame, node)
		case CreateKind:
			return e.evaluateCreate(frame, node)
		case DestroyKind:
			return e.evaluateDestroy(frame, node)
		case DeprecateKind:
			return e.evaluateDeprecate(frame, node)
		case ExitKind:
			return e.evaluateExit(frame, node)
		case ParseKind:
			return e.evaluateParse(frame, node)
		case BuildKind:
			return e.evaluateBuild(frame, node)
		}
		return e.fail(fmt.Sprintf("unrecognized function call kind '%s'", node.Kind))
	}

	return e.fail(fmt.Sprintf("unrecognized instruction node %T", inst))
}

// ----------------------------------------------------------------------------
// Per-kind evaluators

// Specialized evaluator for assignments: evaluate the right-hand side, take
// ownership of the value and store it under the 'memory.…' target path.
func (e *Evaluator) evaluateAssignment(frame expression.Frame, node Assignment) error {
	value, err := e.evaluateOwned(frame, node.Expression)
	if err != nil {
		return err
	}

	return e.store(frame, node.Path, value)
}

// Specialized evaluator for 'send(agent_id, message)': hands the message to
// the agent registry, which takes ownership of it on success.
func (e *Evaluator) evaluateSend(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, SendKind, 2); err != nil {
		return err
	}
	if e.registry == nil {
		return e.fail("no agent registry available for 'send'")
	}

	agentID, err := e.evaluateInteger(frame, node.Args[0], "send", "agent id")
	if err != nil {
		return err
	}
	message, err := e.evaluateOwned(frame, node.Args[1])
	if err != nil {
		return err
	}

	accepted := e.registry.Enqueue(agentID, message)
	if !accepted {
		message.Destroy() // The registry refused it, ownership stays here
	}

	return e.finish(frame, node, boolResult(accepted))
}

// Specialized evaluator for 'if(condition, then, else)': integer 0 and the
// empty string select the else branch, anything else the then branch. Only
// the selected branch is evaluated and produced.
func (e *Evaluator) evaluateIf(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, IfKind, 3); err != nil {
		return err
	}

	condition, err := e.evaluateOwned(frame, node.Args[0])
	if err != nil {
		return err
	}

	selectElse := (condition.Kind() == data.Integer && condition.Integer() == 0) ||
		(condition.Kind() == data.String && condition.String() == "")
	condition.Destroy()

	branch := node.Args[1]
	if selectElse {
		branch = node.Args[2]
	}

	result, err := e.evaluateOwned(frame, branch)
	if err != nil {
		return err
	}
	return e.finish(frame, node, result)
}

// Specialized evaluator for 'compile(method_name, body, version)'.
func (e *Evaluator) evaluateCompile(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, CompileKind, 3); err != nil {
		return err
	}
	if e.methodology == nil {
		return e.fail("no methodology available for 'compile'")
	}

	name, err := e.evaluateString(frame, node.Args[0], "compile", "method name")
	if err != nil {
		return err
	}
	body, err := e.evaluateString(frame, node.Args[1], "compile", "body")
	if err != nil {
		return err
	}
	version, err := e.evaluateString(frame, node.Args[2], "compile", "version")
	if err != nil {
		return err
	}

	return e.finish(frame, node, boolResult(e.methodology.Compile(name, body, version)))
}

// Specialized evaluator for 'create(method_name, version[, context])': the
// two-argument form passes a nil context (the registry treats it as empty).
func (e *Evaluator) evaluateCreate(frame expression.Frame, node FunctionCall) error {
	if len(node.Args) != 2 && len(node.Args) != 3 {
		return e.fail(fmt.Sprintf("'create' expects 2 or 3 arguments, got %d", len(node.Args)))
	}
	if e.registry == nil {
		return e.fail("no agent registry available for 'create'")
	}

	name, err := e.evaluateString(frame, node.Args[0], "create", "method name")
	if err != nil {
		return err
	}
	version, err := e.evaluateString(frame, node.Args[1], "create", "version")
	if err != nil {
		return err
	}

	var context *data.Value
	if len(node.Args) == 3 {
		context, err = e.evaluateOwned(frame, node.Args[2])
		if err != nil {
			return err
		}
		if context.Kind() != data.Map {
			context.Destroy()
			return e.fail("'create' context must be a map")
		}
	}

	agentID := e.registry.Spawn(name, version, context)
	if agentID == 0 && context != nil {
		context.Destroy() // The registry refused it, ownership stays here
	}

	return e.finish(frame, node, data.NewInteger(agentID))
}

// Specialized evaluator for 'destroy(agent_id)'.
func (e *Evaluator) evaluateDestroy(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, DestroyKind, 1); err != nil {
		return err
	}
	if e.registry == nil {
		return e.fail("no agent registry available for 'destroy'")
	}

	agentID, err := e.evaluateInteger(frame, node.Args[0], "destroy", "agent id")
	if err != nil {
		return err
	}

	return e.finish(frame, node, boolResult(e.registry.Kill(agentID)))
}

// Specialized evaluator for 'deprecate(method_name, version)'.
func (e *Evaluator) evaluateDeprecate(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, DeprecateKind, 2); err != nil {
		return err
	}
	if e.methodology == nil {
		return e.fail("no methodology available for 'deprecate'")
	}

	name, err := e.evaluateString(frame, node.Args[0], "deprecate", "method name")
	if err != nil {
		return err
	}
	version, err := e.evaluateString(frame, node.Args[1], "deprecate", "version")
	if err != nil {
		return err
	}

	return e.finish(frame, node, boolResult(e.methodology.Deprecate(name, version)))
}

// Specialized evaluator for 'exit(agent_id)'. Like 'destroy' it delegates to
// the registry's kill; the enclosing scheduler may treat the two differently.
func (e *Evaluator) evaluateExit(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, ExitKind, 1); err != nil {
		return err
	}
	if e.registry == nil {
		return e.fail("no agent registry available for 'exit'")
	}

	agentID, err := e.evaluateInteger(frame, node.Args[0], "exit", "agent id")
	if err != nil {
		return err
	}

	return e.finish(frame, node, boolResult(e.registry.Kill(agentID)))
}

// Specialized evaluator for 'parse(template, input)': produces the map of
// placeholder values extracted from the input.
func (e *Evaluator) evaluateParse(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, ParseKind, 2); err != nil {
		return err
	}

	template, err := e.evaluateString(frame, node.Args[0], "parse", "template")
	if err != nil {
		return err
	}
	input, err := e.evaluateString(frame, node.Args[1], "parse", "input")
	if err != nil {
		return err
	}

	return e.finish(frame, node, parseTemplate(template, input))
}

// Specialized evaluator for 'build(template, values)': produces the template
// text with every resolvable placeholder substituted.
func (e *Evaluator) evaluateBuild(frame expression.Frame, node FunctionCall) error {
	if err := e.check(node, BuildKind, 2); err != nil {
		return err
	}

	template, err := e.evaluateString(frame, node.Args[0], "build", "template")
	if err != nil {
		return err
	}
	values, err := e.evaluateOwned(frame, node.Args[1])
	if err != nil {
		return err
	}
	if values.Kind() != data.Map {
		values.Destroy()
		return e.fail("'build' values must be a map")
	}

	result := data.NewString(buildTemplate(template, values))
	values.Destroy()

	return e.finish(frame, node, result)
}

// ----------------------------------------------------------------------------
// Shared protocol helpers

// Prelude checks: verifies the node kind tag and the argument count.
func (e *Evaluator) check(node FunctionCall, kind Kind, args int) error {
	if node.Kind != kind {
		return e.fail(fmt.Sprintf("expected a '%s' node, got '%s'", kind, node.Kind))
	}
	if len(node.Args) != args {
		return e.fail(fmt.Sprintf("'%s' expects %d argument(s), got %d", node.Name, args, len(node.Args)))
	}
	return nil
}

// Evaluates an argument expression and takes ownership of the result: memory
// accesses yield borrows of stored values, so those are deep-copied, every
// other node already produces a fresh unowned value.
func (e *Evaluator) evaluateOwned(frame expression.Frame, expr expression.Expression) (*data.Value, error) {
	value, err := e.expressions.Evaluate(frame, expr)
	if err != nil {
		return nil, err
	}

	if _, borrowed := expr.(expression.MemoryAccess); borrowed {
		return data.Copy(value), nil
	}
	return value, nil
}

// Evaluates an argument expected to be an integer and unwraps it.
func (e *Evaluator) evaluateInteger(frame expression.Frame, expr expression.Expression, name, role string) (int32, error) {
	value, err := e.evaluateOwned(frame, expr)
	if err != nil {
		return 0, err
	}
	defer value.Destroy()

	if value.Kind() != data.Integer {
		return 0, e.fail(fmt.Sprintf("'%s' %s must be an integer, got %s", name, role, value.Kind()))
	}
	return value.Integer(), nil
}

// Evaluates an argument expected to be a string and unwraps it.
func (e *Evaluator) evaluateString(frame expression.Frame, expr expression.Expression, name, role string) (string, error) {
	value, err := e.evaluateOwned(frame, expr)
	if err != nil {
		return "", err
	}
	defer value.Destroy()

	if value.Kind() != data.String {
		return "", e.fail(fmt.Sprintf("'%s' %s must be a string, got %s", name, role, value.Kind()))
	}
	return value.String(), nil
}

// Stores the call's result when a result path is present, otherwise destroys
// it; 'result' ownership always ends up resolved here.
func (e *Evaluator) finish(frame expression.Frame, node FunctionCall, result *data.Value) error {
	if node.ResultPath == "" {
		result.Destroy()
		return nil
	}
	return e.store(frame, node.ResultPath, result)
}

// Writes 'value' into memory under the 'memory.…' path, the map taking
// ownership of it. Fails (destroying the value) on a non-memory path, a
// missing interior map or an already-owned value.
func (e *Evaluator) store(frame expression.Frame, path string, value *data.Value) error {
	target := data.NewVariablePath(path)
	suffix, ok := target.SuffixAfterRoot()
	if !target.IsMemory() || !ok {
		value.Destroy()
		return e.fail(fmt.Sprintf("'%s' is not a valid 'memory.…' target path", path))
	}

	if frame.Memory == nil {
		value.Destroy()
		return e.fail("no memory available in the current frame")
	}
	if !frame.Memory.Set(suffix, value) {
		value.Destroy()
		return e.fail(fmt.Sprintf("cannot store under '%s': interior maps missing or value already owned", path))
	}
	return nil
}

func boolResult(outcome bool) *data.Value {
	if outcome {
		return data.NewInteger(1)
	}
	return data.NewInteger(0)
}

// Logs and materializes an evaluation error.
func (e *Evaluator) fail(msg string) error {
	e.log.Error(msg)
	return fmt.Errorf("%s", msg)
}
