// ABOUTME: Entry point for the dispatch console CLI and TUI
// ABOUTME: Routes to auth, agent, call, analytics, realtime, and MCP commands
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fleetcall/dispatchctl/cli"
	"github.com/fleetcall/dispatchctl/config"
	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/realtime"
	"github.com/fleetcall/dispatchctl/tui"
)

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Cache database path (default: XDG data dir)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dispatchctl version %s\n", cli.Version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open cache database: %v", err)
	}
	defer database.Close()

	app := cli.NewApp(cfg, database)

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "login":
		run(cli.LoginCommand, app, commandArgs)
	case "logout":
		run(cli.LogoutCommand, app, commandArgs)
	case "whoami":
		run(cli.WhoamiCommand, app, commandArgs)

	case "agents":
		routeAgents(app, commandArgs)
	case "calls":
		routeCalls(app, commandArgs)

	case "analytics":
		run(cli.AnalyticsCommand, app, commandArgs)
	case "listen":
		run(cli.ListenCommand, app, commandArgs)
	case "webcall":
		run(cli.WebCallCommand, app, commandArgs)
	case "dashboard":
		run(cli.DashboardCommand, app, commandArgs)
	case "graph":
		run(cli.FlowGraphCommand, app, commandArgs)

	case "tui":
		client, err := app.RequireClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		listener := realtime.NewListener(cfg.SocketURL,
			realtime.WithToken(app.SocketToken()),
			realtime.WithLogger(app.Log))
		if err := tui.Run(database, client, listener); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(app); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd func(*cli.App, []string) error, app *cli.App, args []string) {
	if err := cmd(app, args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func routeAgents(app *cli.App, args []string) {
	if len(args) == 0 {
		fmt.Println("Error: agents requires a subcommand")
		printUsage()
		os.Exit(1)
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "list":
		run(cli.ListAgentsCommand, app, subArgs)
	case "show":
		run(cli.ShowAgentCommand, app, subArgs)
	case "create":
		run(cli.CreateAgentCommand, app, subArgs)
	case "update":
		run(cli.UpdateAgentCommand, app, subArgs)
	case "delete":
		run(cli.DeleteAgentCommand, app, subArgs)
	case "deploy":
		run(cli.DeployAgentCommand, app, subArgs)
	case "test":
		run(cli.TestAgentCommand, app, subArgs)
	case "calls":
		run(cli.AgentCallsCommand, app, subArgs)
	default:
		fmt.Printf("Unknown agents command: %s\n\n", sub)
		printUsage()
		os.Exit(1)
	}
}

func routeCalls(app *cli.App, args []string) {
	if len(args) == 0 {
		fmt.Println("Error: calls requires a subcommand")
		printUsage()
		os.Exit(1)
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "initiate":
		run(cli.InitiateCallCommand, app, subArgs)
	case "list":
		run(cli.ListCallsCommand, app, subArgs)
	case "active":
		run(cli.ActiveCallsCommand, app, subArgs)
	case "show":
		run(cli.ShowCallCommand, app, subArgs)
	case "transcript":
		run(cli.TranscriptCommand, app, subArgs)
	case "cancel":
		run(cli.CancelCallCommand, app, subArgs)
	case "retry":
		run(cli.RetryCallCommand, app, subArgs)
	case "status":
		run(cli.CallStatusCommand, app, subArgs)
	default:
		fmt.Printf("Unknown calls command: %s\n\n", sub)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`dispatchctl v%s - Logistics dispatch voice-agent console

USAGE:
  dispatchctl [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Cache database path (default: XDG data dir)

AUTH:
  dispatchctl login --email <email>   Log in (password prompted, or DISPATCH_PASSWORD)
  dispatchctl logout                  Clear the stored session
  dispatchctl whoami                  Show the active session

AGENTS:
  dispatchctl agents list             List agent configs
    --scenario <type>                   Filter (check_in or emergency)
    --page <n> --per-page <n>           Pagination
    --cached                            Offline, from the local cache

  dispatchctl agents show <id>        Show one config in full
  dispatchctl agents create           Create a config from scenario defaults
    --file <path>                       JSON config file (flags override)
    --name <name>                       Config name (required)
    --scenario <type>                   check_in or emergency
    --opening/--follow-up/--closing     Prompts (required)

  dispatchctl agents update [flags] <id>   Update fields on a config
  dispatchctl agents delete [--force] <id> Delete a config
  dispatchctl agents deploy <id>           Push the config to the voice provider
  dispatchctl agents test <id>             Run a backend dry-run
  dispatchctl agents calls <id>            Recent calls using a config

CALLS:
  dispatchctl calls initiate          Start a phone call
    --driver <name> --phone <number> --load <number> --agent <id>

  dispatchctl calls list              List calls
    --status <status> --outcome <outcome> --page <n> --cached

  dispatchctl calls active            Calls still in flight
  dispatchctl calls show <id>         Details and extracted data
  dispatchctl calls transcript <id>   Turn-by-turn transcript (--output for JSON)
  dispatchctl calls cancel <id>       Cancel an in-flight call
  dispatchctl calls retry <id>        Re-dial a failed call
  dispatchctl calls status <id>       Poll one call's status

OTHER:
  dispatchctl analytics               Summary over a trailing window
    --days <n>                          Window, 1-90 (default 7)
    --export json|xlsx --output <file>  Write an export file

  dispatchctl listen [--call <id>]    Stream realtime events to stdout
  dispatchctl webcall                 Run a live audio call from this terminal
    --driver <name> --load <number> --agent <id>

  dispatchctl dashboard               Ops overview from the local cache
  dispatchctl graph [--output <file>] Agent-to-outcome DOT graph
  dispatchctl tui                     Full-screen console
  dispatchctl mcp                     MCP server on stdio

EXAMPLES:
  dispatchctl login --email dispatch@example.com
  dispatchctl agents create --name "Standard Check-in" --scenario check_in \
    --opening "Hi, this is dispatch calling about your load." \
    --follow-up "Can you give me a status update on your location?" \
    --closing "Thanks, drive safe out there."
  dispatchctl calls initiate --driver "Maria Lopez" --phone 5551234567 --load LD-4471 --agent 1
  dispatchctl analytics --days 30 --export xlsx
`, cli.Version)
}
