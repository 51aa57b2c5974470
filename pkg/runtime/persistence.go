package runtime

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/method"
)

// ----------------------------------------------------------------------------
// Parser Combinator(s)

// This section defines the Parser Combinator for every entry of the store files.
//
// The methodology and the agency persist to line-oriented text files sharing
// one grammar: a 'method' entry carries name, version and the escaped source
// body; an 'agent' entry carries id and method binding, followed by zero or
// more 'mem' entries re-populating the agent's scalar memory slots. Strings
// are double-quoted with '\'-escapes, order in the file is registration order.

// Top level object, will generate the traversable AST based on the input plus the PCs below.
var ast = pc.NewAST("store", 0)

var (
	// Parser combinator for a whole store file (any mix of entries until EOF)
	pStore = ast.ManyUntil("store", nil, pEntry, pc.End())
	// Parser combinator for a single store entry
	pEntry = ast.OrdChoice("entry", nil, pMethodDecl, pAgentDecl, pMemoryDecl)

	// Method entry, compliant with the following syntax: `method "name" "version" "body"`
	pMethodDecl = ast.And("method_decl", nil, pc.Atom("method", "METHOD"), pString, pString, pString)
	// Agent entry, compliant with the following syntax: `agent {id} "method" "version"`
	pAgentDecl = ast.And("agent_decl", nil, pc.Atom("agent", "AGENT"), pInt, pString, pString)
	// Memory entry, compliant with the following syntax: `mem "path" {value}`
	pMemoryDecl = ast.And("memory_decl", nil, pc.Atom("mem", "MEM"), pString, pScalar)
)

var (
	// ! The order of these PCs is important: by putting the INT token before the
	// ! DOUBLE one we'd never parse a double completely because the integer part
	// ! would be picked up first before giving back control to pScalar.
	pScalar = ast.OrdChoice("scalar", nil, pDouble, pInt, pString)

	pDouble = pc.Token(`-?[0-9]+\.[0-9]*`, "DOUBLE")
	pInt    = pc.Token(`-?[0-9]+`, "INT")
	pString = pc.Token(`"(?:\\.|[^"\\])*"`, "STRING")
)

// ----------------------------------------------------------------------------
// Methodology persistence

// Writes every registered method to 'w', one entry per line, registration order.
func SaveMethodology(m *Methodology, w io.Writer) error {
	for _, compiled := range m.Methods() {
		_, err := fmt.Fprintf(w, "method \"%s\" \"%s\" \"%s\"\n",
			escape(compiled.Name), escape(compiled.Version), escape(compiled.Source))
		if err != nil {
			return fmt.Errorf("cannot write methodology store: %w", err)
		}
	}
	return nil
}

// Reads a methodology store from 'r' and registers every method into 'm'.
// Entries other than 'method' are rejected, as are bodies that fail to parse.
func LoadMethodology(log *logging.Log, r io.Reader, m *Methodology) error {
	root, err := parseStore(r)
	if err != nil || root == nil {
		return err
	}

	for _, child := range root.GetChildren() {
		if child.GetName() != "method_decl" {
			return fmt.Errorf("unexpected entry '%s' in methodology store", child.GetName())
		}

		name, version, body, err := handleMethodDecl(child)
		if err != nil {
			return err
		}

		compiled, err := method.New(log, name, version, body)
		if err != nil {
			return fmt.Errorf("stored method '%s' does not parse: %w", name, err)
		}
		if !m.Register(compiled) {
			return fmt.Errorf("stored method '%s' version '%s' is a duplicate", name, version)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Agency persistence

// Writes every live agent to 'w': one 'agent' entry, then one 'mem' entry per
// scalar memory slot (nested maps and lists are not persisted).
func SaveAgency(a *Agency, w io.Writer) error {
	for _, agentID := range a.IDs() {
		agent := a.Agent(agentID)

		_, err := fmt.Fprintf(w, "agent %d \"%s\" \"%s\"\n",
			agent.ID, escape(agent.Method.Name), escape(agent.Method.Version))
		if err != nil {
			return fmt.Errorf("cannot write agency store: %w", err)
		}

		keys := agent.Memory().Keys()
		for i := 0; i < keys.Count(); i++ {
			key := keys.Item(i).String()
			value := agent.Memory().Get(key)

			switch value.Kind() {
			case data.Integer:
				fmt.Fprintf(w, "mem \"%s\" %d\n", escape(key), value.Integer())
			case data.Double:
				fmt.Fprintf(w, "mem \"%s\" %s\n", escape(key), formatDouble(value.Double()))
			case data.String:
				fmt.Fprintf(w, "mem \"%s\" \"%s\"\n", escape(key), escape(value.String()))
			}
		}
		keys.Destroy()
	}
	return nil
}

// Reads an agency store from 'r' and restores every agent into 'a', with its
// original id and scalar memory. Method bindings resolve through the
// agency's methodology, so the methodology store must be loaded first.
func LoadAgency(log *logging.Log, r io.Reader, a *Agency) error {
	root, err := parseStore(r)
	if err != nil || root == nil {
		return err
	}

	var current *Agent
	for _, child := range root.GetChildren() {
		switch child.GetName() {
		case "agent_decl":
			current, err = handleAgentDecl(child, a)
			if err != nil {
				return err
			}

		case "memory_decl":
			// A memory entry re-populates the most recent agent entry
			if current == nil {
				return fmt.Errorf("memory entry before any agent entry in agency store")
			}
			if err := handleMemoryDecl(child, current); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unexpected entry '%s' in agency store", child.GetName())
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Subtree handlers

// Scans the textual store content and returns the traversable AST root
// (nil for an empty or whitespace-only store).
func parseStore(r io.Reader) (pc.Queryable, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read from 'io.Reader': %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, nil
	}

	// The package-level AST object is reused across loads, reset it first
	ast.Reset()

	root, _ := ast.Parsewith(pStore, pc.NewScanner(content))
	if root == nil {
		return nil, fmt.Errorf("failed to parse AST from store content")
	}
	return root, nil
}

// Specialized function to convert a "method_decl" node to its fields.
func handleMethodDecl(node pc.Queryable) (name, version, body string, err error) {
	children := node.GetChildren()
	if len(children) != 4 {
		return "", "", "", fmt.Errorf("expected node 'method_decl' with 4 leaf, got %d", len(children))
	}

	return unquote(children[1].GetValue()),
		unquote(children[2].GetValue()),
		unquote(children[3].GetValue()), nil
}

// Specialized function to convert an "agent_decl" node to a restored '*Agent'.
func handleAgentDecl(node pc.Queryable, a *Agency) (*Agent, error) {
	children := node.GetChildren()
	if len(children) != 4 {
		return nil, fmt.Errorf("expected node 'agent_decl' with 4 leaf, got %d", len(children))
	}

	parsed, err := strconv.ParseInt(children[1].GetValue(), 10, 32)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("invalid agent id '%s' in agency store", children[1].GetValue())
	}
	agentID := int32(parsed)

	name, version := unquote(children[2].GetValue()), unquote(children[3].GetValue())
	bound := a.methodology.Resolve(name, version)
	if bound == nil {
		return nil, fmt.Errorf("stored agent %d binds unknown method '%s' version '%s'", agentID, name, version)
	}
	if a.agents.Has(agentID) {
		return nil, fmt.Errorf("stored agent id %d is a duplicate", agentID)
	}

	// Restore with the original id and keep the id counter ahead of it
	agent := &Agent{ID: agentID, Method: bound, memory: data.NewMap(), context: data.NewMap()}
	agent.memory.Hold(agent)
	agent.context.Hold(agent)

	a.agents.Set(agentID, agent)
	if agentID >= a.nextID {
		a.nextID = agentID + 1
	}
	return agent, nil
}

// Specialized function to apply a "memory_decl" node to a restored agent.
func handleMemoryDecl(node pc.Queryable, agent *Agent) error {
	children := node.GetChildren()
	if len(children) != 3 {
		return fmt.Errorf("expected node 'memory_decl' with 3 leaf, got %d", len(children))
	}

	path := unquote(children[1].GetValue())
	scalar := children[2]

	var value *data.Value
	switch scalar.GetName() {
	case "INT":
		parsed, err := strconv.ParseInt(scalar.GetValue(), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid integer '%s' in agency store", scalar.GetValue())
		}
		value = data.NewInteger(int32(parsed))

	case "DOUBLE":
		parsed, err := strconv.ParseFloat(scalar.GetValue(), 64)
		if err != nil {
			return fmt.Errorf("invalid double '%s' in agency store", scalar.GetValue())
		}
		value = data.NewDouble(parsed)

	case "STRING":
		value = data.NewString(unquote(scalar.GetValue()))

	default:
		return fmt.Errorf("expected token 'INT', 'DOUBLE' or 'STRING', got %s", scalar.GetName())
	}

	if !agent.memory.Set(path, value) {
		return fmt.Errorf("cannot restore memory slot '%s'", path)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Store string helpers

var escaper = strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\r", "\\r")

// Escapes a string for embedding between double quotes in a store file.
func escape(s string) string {
	return escaper.Replace(s)
}

// Reverses 'escape' on a still-quoted store token.
func unquote(quoted string) string {
	if len(quoted) >= 2 && quoted[0] == '"' && quoted[len(quoted)-1] == '"' {
		quoted = quoted[1 : len(quoted)-1]
	}

	var out strings.Builder
	for i := 0; i < len(quoted); i++ {
		if quoted[i] != '\\' || i+1 >= len(quoted) {
			out.WriteByte(quoted[i])
			continue
		}

		i++
		switch quoted[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		default:
			out.WriteByte(quoted[i])
		}
	}
	return out.String()
}

// Formats a double so that it always reads back as one (a '.' is forced).
func formatDouble(v float64) string {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(text, '.') {
		text += ".0"
	}
	return text
}
