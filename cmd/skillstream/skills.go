package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skillstream/internal/skills"
)

func newSkillsCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect discovered skills",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List discovered skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			list := state.library.List()
			if len(list) == 0 {
				fmt.Println(gray("No skills found. Set --skills-dir or SKILLSTREAM_SKILLS_DIR."))
				return nil
			}

			fmt.Println(bold(fmt.Sprintf("Skills (%d) in %s", len(list), state.library.Root())))
			for _, props := range list {
				fmt.Printf("  %s  %s\n", green(props.Name), gray(props.Description))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info <name>",
		Short: "Show a skill's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			tool := skills.NewActivationTool(state.library, nil)
			out, err := tool.Invoke(args[0], skills.ActionInfo)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Render a skill's instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			tool := skills.NewActivationTool(state.library, nil)
			out, err := tool.Invoke(args[0], skills.ActionActivate)
			if err != nil {
				return err
			}

			if isTTY() {
				renderer, rendererErr := NewMarkdownRenderer()
				if rendererErr == nil {
					return renderer.RenderAndPrint(out)
				}
			}
			fmt.Println(strings.TrimRight(out, "\n"))
			return nil
		},
	})

	return cmd
}

func newPromptCommand(state *cliState) *cobra.Command {
	var withTokens bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the skills system prompt section",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			list := state.library.List()
			prompt := skills.GeneratePrompt(list)
			if prompt == "" {
				fmt.Println(gray("No skills found, prompt section is empty."))
				return nil
			}
			fmt.Println(prompt)
			if withTokens {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", gray(fmt.Sprintf("~%d tokens", skills.PromptTokenCost(list))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTokens, "tokens", false, "Print the estimated token cost of the prompt")
	return cmd
}
