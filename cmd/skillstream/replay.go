package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	jsonx "skillstream/internal/shared/json"
	"skillstream/internal/stream/render"
)

// replayOptions tunes how a recorded event stream is rendered.
type replayOptions struct {
	markdown bool
	jsonOut  bool
}

func newReplayCommand(state *cliState) *cobra.Command {
	opts := replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Render a recorded event stream (JSONL)",
		Long: `Replay reads raw agent runtime events, one JSON object per line, and
renders them. With no file argument it reads from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			input := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open events file: %w", err)
				}
				defer func() { _ = file.Close() }()
				input = file
			}

			return replayStream(input, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Emit markdown fragments instead of terminal output")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit SSE-style JSON payloads, one per line")
	return cmd
}

func replayStream(in io.Reader, out io.Writer, opts replayOptions) error {
	var renderer *render.Renderer
	switch {
	case opts.jsonOut:
		renderer = render.New(render.NewSSEHandler())
	case opts.markdown:
		renderer = render.New(render.NewMarkdownHandler())
	default:
		renderer = render.New(render.NewTerminalHandler(out, !color.NoColor))
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]any
		if err := jsonx.Unmarshal([]byte(line), &raw); err != nil {
			fmt.Fprintln(os.Stderr, yellow(fmt.Sprintf("skipping line %d: %v", lineNo, err)))
			continue
		}

		outputs := renderer.Process(raw)
		// The terminal handler writes as a side effect; the other handlers
		// return printable fragments.
		for _, fragment := range outputs {
			if opts.jsonOut {
				fmt.Fprintln(out, fragment.Content)
				continue
			}
			fmt.Fprint(out, fragment.Content)
		}
	}
	return scanner.Err()
}
