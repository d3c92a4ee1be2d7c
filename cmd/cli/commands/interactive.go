package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (sign in once, run multiple commands)",
		Long: `Start an interactive session where the working week, the signed-in user
and any resize gesture in progress carry over from one command to the next.
The session keeps running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.printf("\n🚀 Starting interactive session...\n")
			app.printf("Type 'help' for available commands, 'exit' or 'quit' to leave\n")

			commands := siblingCommands(cmd)
			return runInteractive(app, commands)
		},
	}

	return cmd
}

func siblingCommands(cmd *cobra.Command) map[string]*cobra.Command {
	commands := make(map[string]*cobra.Command)
	for _, subCmd := range cmd.Parent().Commands() {
		switch subCmd.Name() {
		case "interactive", "completion", "help":
			continue
		}
		commands[subCmd.Name()] = subCmd
	}
	return commands
}

// runInteractive reads commands from app.In until exit or end of input.
// Prompts issued by commands share the same reader.
func runInteractive(app *AppContext, commands map[string]*cobra.Command) error {
	for {
		app.printf("> ")

		raw, readErr := app.In.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("error reading input: %w", readErr)
		}

		line := strings.TrimSpace(raw)
		if line != "" {
			if done := dispatch(app, commands, line); done {
				return nil
			}
		}

		if readErr == io.EOF {
			app.printf("\n")
			return nil
		}
	}
}

// dispatch runs one command line and reports whether the session should end
func dispatch(app *AppContext, commands map[string]*cobra.Command, line string) bool {
	parts, err := parseCommandLine(line)
	if err != nil {
		app.printf("❌ Error parsing command: %v\n\n", err)
		return false
	}
	if len(parts) == 0 {
		return false
	}
	cmdName := parts[0]
	cmdArgs := parts[1:]

	switch cmdName {
	case "exit", "quit":
		app.printf("👋 Goodbye!\n")
		return true
	case "help":
		printInteractiveHelp(app, commands)
		return false
	}

	targetCmd, exists := commands[cmdName]
	if !exists {
		app.printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
		return false
	}

	// Flags keep their values between runs of the same command
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	})

	// RunE is called directly so PersistentPreRunE does not rebuild the app
	if err := targetCmd.ParseFlags(cmdArgs); err != nil {
		app.printf("❌ Error parsing flags: %v\n\n", err)
		return false
	}
	cmdArgs = targetCmd.Flags().Args()

	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
			app.printf("❌ Error: %v\n\n", err)
			return false
		}
	}

	if targetCmd.RunE != nil {
		if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
			app.printf("❌ Error: %v\n\n", err)
		}
	} else if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, cmdArgs)
	}
	return false
}

func printInteractiveHelp(app *AppContext, commands map[string]*cobra.Command) {
	app.printf("\nAvailable commands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		app.printf("  %-46s %s\n", cmd.Use, cmd.Short)
	}

	app.printf("\n  %-46s %s\n", "help", "Show this help message")
	app.printf("  %-46s %s\n\n", "exit, quit", "Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single
// and double quotes. JSON drag payloads are passed in single quotes.
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune
	quoted := false

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
			quoted = true
		case unicode.IsSpace(r):
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}
	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}

	return args, nil
}
