package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/teris-io/cli"

	"its-hmny.dev/agerun/pkg/data"
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/runtime"
)

var Description = strings.ReplaceAll(`
The AgeRun runner compiles a method source file, spawns an agent bound to it and
dispatches messages to that agent until every mailbox is empty. AgeRun is a small
dynamically typed message-passing language: agents exchange messages and execute
methods that read and write their private memory.
`, "\n", " ")

var AgeRun = cli.New(Description).
	WithArg(cli.NewArg("method", "The method (.method) source file to be compiled").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("version", "The version to register the method under (default 1.0.0)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("message", "The message sent to the spawned agent (default \"ping\")").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("check", "Only compile the method, don't spawn nor dispatch").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dump-memory", "Prints the agent memory after the run").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	version := options["version"]
	if version == "" {
		version = "1.0.0"
	}

	// The method registers under the input file's base name
	name := strings.TrimSuffix(path.Base(args[0]), path.Ext(args[0]))

	log := logging.New(os.Stderr)
	interpreter := runtime.NewInterpreter(log)

	// Compiles (parses + registers) the method into the methodology
	if !interpreter.Methodology().Compile(name, string(content), version) {
		fmt.Printf("ERROR: Unable to complete 'compile' pass on '%s'\n", args[0])
		return -1
	}

	if _, enabled := options["check"]; enabled {
		resolved := interpreter.Methodology().Resolve(name, version)
		fmt.Printf("%s %s: %d instruction(s)\n", name, version, len(resolved.AST()))
		return 0
	}

	// Spawns the boot agent and hands it the initial message
	agentID := interpreter.Agency().Spawn(name, version, nil)
	if agentID == 0 {
		fmt.Printf("ERROR: Unable to spawn an agent for '%s'\n", name)
		return -1
	}

	message := options["message"]
	if message == "" {
		message = "ping"
	}
	interpreter.Agency().Enqueue(agentID, data.NewString(message))

	processed := interpreter.ProcessAllMessages()
	fmt.Printf("agent %d processed %d message(s)\n", agentID, processed)

	if _, enabled := options["dump-memory"]; enabled {
		agent := interpreter.Agency().Agent(agentID)
		if agent != nil {
			dumpValue(agent.Memory(), 0)
		}
	}
	return 0
}

// Renders a value recursively with two-space indentation per nesting level.
func dumpValue(value *data.Value, depth int) {
	indent := strings.Repeat("  ", depth)

	switch value.Kind() {
	case data.Integer:
		fmt.Printf("%s%d\n", indent, value.Integer())
	case data.Double:
		fmt.Printf("%s%g\n", indent, value.Double())
	case data.String:
		fmt.Printf("%s%q\n", indent, value.String())

	case data.List:
		fmt.Printf("%slist (%d items)\n", indent, value.Count())
		for i := 0; i < value.Count(); i++ {
			dumpValue(value.Item(i), depth+1)
		}

	case data.Map:
		fmt.Printf("%smap (%d entries)\n", indent, value.Count())
		keys := value.Keys()
		for i := 0; i < keys.Count(); i++ {
			key := keys.Item(i).String()
			fmt.Printf("%s  %s:\n", indent, key)
			dumpValue(value.Get(key), depth+2)
		}
		keys.Destroy()
	}
}

func main() { os.Exit(AgeRun.Run(os.Args, os.Stdout)) }
