package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	"github.com/tanpawarit/careermate/agent/toolserver"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and call the lookup capabilities directly",
	}
	cmd.AddCommand(newToolsListCmd(), newToolsCallCmd(), newToolsServeCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capabilities and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := capability.NewRegistry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range caps.List() {
				fmt.Fprintf(out, "%s\n  %s\n", c.Name, c.Description)
				for _, arg := range c.Args {
					var notes []string
					if arg.Required {
						notes = append(notes, "required")
					}
					if arg.Default != nil {
						notes = append(notes, fmt.Sprintf("default=%v", arg.Default))
					}
					fmt.Fprintf(out, "  - %s (%s", arg.Name, arg.Type)
					if len(notes) > 0 {
						fmt.Fprintf(out, ", %s", strings.Join(notes, ", "))
					}
					fmt.Fprintf(out, "): %s\n", arg.Desc)
				}
			}
			return nil
		},
	}
}

func newToolsCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "call <name> [json-args]",
		Short:   "Invoke one capability and print its JSON result",
		Example: `careermate tools call get_missing_skills '{"currentSkills":["Python"],"careerGoal":"Data Scientist"}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := capability.NewRegistry()
			if err != nil {
				return err
			}

			input := map[string]any{}
			if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
				if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
					return fmt.Errorf("%w: arguments must be a JSON object: %v", contractx.ErrArgument, err)
				}
			}

			result, err := caps.Invoke(args[0], input)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func newToolsServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the capabilities over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := capability.NewRegistry()
			if err != nil {
				return err
			}
			return toolserver.New(caps, version).ServeStdio()
		},
	}
}
