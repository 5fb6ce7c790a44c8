package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"skillstream/internal/config"
	"skillstream/internal/skills"
)

// Color definitions for CLI output.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errorText(msg string) string {
	return red("error: " + msg)
}

// isTTY reports whether stdin and stdout are attached to a terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// cliState carries the loaded configuration and skills library across
// subcommands.
type cliState struct {
	cfg     config.Config
	library skills.Library

	configFile string
	skillsDir  string
	noColor    bool
}

func (s *cliState) initialize() error {
	cfg, err := config.LoadFile(s.configFile)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if s.noColor || cfg.Render.Color == "never" {
		color.NoColor = true
	} else if cfg.Render.Color == "always" {
		color.NoColor = false
	}

	dir := s.skillsDir
	if dir == "" {
		dir = cfg.SkillsDir
	}

	var library skills.Library
	if dir == "" {
		library, err = skills.DefaultLibrary()
	} else {
		library, err = skills.Load(dir)
	}
	if err != nil {
		return err
	}
	s.library = library
	for _, warning := range library.Warnings() {
		fmt.Fprintln(os.Stderr, yellow(warning))
	}
	return nil
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "skillstream",
		Short: "Stream renderer and skills toolkit for agent runtimes",
		Long: fmt.Sprintf(`%s

skillstream normalizes raw agent runtime events into typed stream events and
renders them for terminals, markdown surfaces, and SSE clients. It also
manages agent skills: discovery, validation, and progressive disclosure.

%s
  skillstream replay events.jsonl       # Render a recorded event stream
  skillstream skills list               # List discovered skills
  skillstream skills show web-research  # Render a skill's instructions
  skillstream prompt                    # Print the skills system prompt
  skillstream serve                     # Start the streaming HTTP server`,
			bold("skillstream"),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&state.configFile, "config", "", "Config file (default: skillstream.yaml in . or ~/.skillstream)")
	rootCmd.PersistentFlags().StringVar(&state.skillsDir, "skills-dir", "", "Skills directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&state.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newSkillsCommand(state))
	rootCmd.AddCommand(newPromptCommand(state))
	rootCmd.AddCommand(newReplayCommand(state))
	rootCmd.AddCommand(newServeCommand(state))

	return rootCmd
}
