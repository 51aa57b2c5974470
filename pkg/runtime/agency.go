package runtime

import (
	"fmt"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/method"
	"its-hmny.dev/agerun/pkg/utils"
)

// ----------------------------------------------------------------------------
// Agents

// A live agent: an identity, a bound method, a private memory map, a
// read-only context and a FIFO mailbox of pending messages.
//
// The agent owns its memory, context and queued messages (they carry the
// agent as owner token); everything is released and destroyed when the
// agent is killed.
type Agent struct {
	ID     int32          // The identity 'send'/'destroy'/'exit' address
	Method *method.Method // The method run for every dispatched message

	memory  *data.Value              // The mutable map behind 'memory.…' paths
	context *data.Value              // The read-only map behind 'context.…' paths
	mailbox utils.Queue[*data.Value] // Pending messages, dispatch order = arrival order
}

// Returns a borrow of the agent's memory map.
func (a *Agent) Memory() *data.Value {
	return a.memory
}

// Returns a borrow of the agent's context map.
func (a *Agent) Context() *data.Value {
	return a.context
}

// Returns the number of messages waiting in the mailbox.
func (a *Agent) Pending() int {
	return a.mailbox.Count()
}

// ----------------------------------------------------------------------------
// Agency

// This section implements the agent registry ("agency").
//
// It is the collaborator behind the 'send', 'create', 'destroy' and 'exit'
// instructions: it assigns agent ids monotonically from 1, serialises
// nothing itself (the interpreter dispatches one message at a time) and
// takes ownership of the values handed to it.
type Agency struct {
	log         *logging.Log
	methodology *Methodology

	agents *utils.OrderedMap[int32, *Agent] // Live agents in spawn order
	nextID int32                            // Ids are never reused within a run
}

// Initializes and returns to the caller a brand new 'Agency' struct.
// Requires the argument '*Methodology' to resolve method bindings.
func NewAgency(log *logging.Log, methodology *Methodology) *Agency {
	return &Agency{
		log:         log,
		methodology: methodology,
		agents:      utils.NewOrderedMap[int32, *Agent](),
		nextID:      1,
	}
}

// Spawns an agent bound to (methodName, version), taking ownership of the
// context (nil means an empty one). Returns the new agent id, 0 when the
// method cannot be resolved or the context is owned elsewhere.
func (a *Agency) Spawn(methodName, version string, context *data.Value) int32 {
	bound := a.methodology.Resolve(methodName, version)
	if bound == nil {
		a.log.Error(fmt.Sprintf("cannot spawn agent: method '%s' version '%s' not found", methodName, version))
		return 0
	}

	if context == nil {
		context = data.NewMap()
	}

	agent := &Agent{ID: a.nextID, Method: bound, memory: data.NewMap(), context: context}
	if !agent.memory.Hold(agent) || !context.Hold(agent) {
		a.log.Error("cannot spawn agent: context is owned elsewhere")
		return 0
	}

	a.agents.Set(agent.ID, agent)
	a.nextID++
	return agent.ID
}

// Kills the agent, destroying its memory, context and every queued message.
// False for an unknown id.
func (a *Agency) Kill(agentID int32) bool {
	agent, found := a.agents.Get(agentID)
	if !found {
		return false
	}
	a.agents.Delete(agentID)

	for agent.mailbox.Count() > 0 {
		message, _ := agent.mailbox.Pop()
		message.Transfer(agent)
		message.Destroy()
	}

	agent.memory.Transfer(agent)
	agent.memory.Destroy()
	agent.context.Transfer(agent)
	agent.context.Destroy()
	return true
}

// Enqueues 'message' on the agent's mailbox, taking ownership of it. False
// (ownership stays with the caller) for an unknown id or an owned message.
func (a *Agency) Enqueue(agentID int32, message *data.Value) bool {
	agent, found := a.agents.Get(agentID)
	if !found || message == nil {
		return false
	}
	if !message.Hold(agent) {
		return false
	}

	agent.mailbox.Push(message)
	return true
}

// Returns a borrow of the agent with the given id (nil when unknown).
func (a *Agency) Agent(agentID int32) *Agent {
	agent, _ := a.agents.Get(agentID)
	return agent
}

// Returns the live agent ids in spawn order.
func (a *Agency) IDs() []int32 {
	return a.agents.Keys()
}

// Returns the number of live agents.
func (a *Agency) Count() int {
	return a.agents.Count()
}

// Pops the next pending message of 'agent', released back to unowned.
// Returns nil when the mailbox is empty.
func (a *Agency) dequeue(agent *Agent) *data.Value {
	if agent.mailbox.Count() == 0 {
		return nil
	}

	message, _ := agent.mailbox.Pop()
	message.Transfer(agent)
	return message
}
