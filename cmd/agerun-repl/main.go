package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/expression"
	"its-hmny.dev/agerun/pkg/instruction"
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/runtime"
)

var Banner = strings.TrimSpace(`
AgeRun REPL - type one instruction per line (e.g. 'memory.x := 40 + 2').
Commands: :memory dumps the scratch memory, :agents lists live agents,
:drain dispatches every pending message, :quit leaves.
`)

func main() {
	rl, err := readline.New("agerun> ")
	if err != nil {
		fmt.Printf("ERROR: Unable to initialize the line reader: %s\n", err)
		os.Exit(-1)
	}
	defer rl.Close()

	log := logging.New(os.Stderr)
	interpreter := runtime.NewInterpreter(log)

	// The REPL evaluates instructions against a scratch frame: a private
	// memory map, an empty context and no message.
	parser := instruction.NewParser(log)
	evaluator := instruction.NewEvaluator(log, interpreter.Agency(), interpreter.Methodology())
	memory, context := data.NewMap(), data.NewMap()
	frame := expression.NewFrame(memory, context, nil)

	fmt.Println(Banner)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}

		text := strings.TrimSpace(line)
		switch {
		case text == "":
			continue

		case text == ":quit":
			return

		case text == ":memory":
			dumpMap(memory)
			continue

		case text == ":agents":
			for _, agentID := range interpreter.Agency().IDs() {
				agent := interpreter.Agency().Agent(agentID)
				fmt.Printf("agent %d -> %s %s (%d pending)\n",
					agent.ID, agent.Method.Name, agent.Method.Version, agent.Pending())
			}
			continue

		case text == ":drain":
			fmt.Printf("processed %d message(s)\n", interpreter.ProcessAllMessages())
			continue
		}

		parsed, err := parser.Parse(text)
		if err != nil {
			continue // Already reported through the log sink
		}
		if err := evaluator.Evaluate(frame, parsed); err != nil {
			continue // Already reported through the log sink
		}
	}
}

// Renders the scratch memory map one top-level entry per line.
func dumpMap(memory *data.Value) {
	keys := memory.Keys()
	defer keys.Destroy()

	if keys.Count() == 0 {
		fmt.Println("(empty)")
		return
	}

	for i := 0; i < keys.Count(); i++ {
		key := keys.Item(i).String()
		value := memory.Get(key)

		switch value.Kind() {
		case data.Integer:
			fmt.Printf("%s = %d\n", key, value.Integer())
		case data.Double:
			fmt.Printf("%s = %g\n", key, value.Double())
		case data.String:
			fmt.Printf("%s = %q\n", key, value.String())
		case data.List:
			fmt.Printf("%s = list (%d items)\n", key, value.Count())
		case data.Map:
			fmt.Printf("%s = map (%d entries)\n", key, value.Count())
		}
	}
}
