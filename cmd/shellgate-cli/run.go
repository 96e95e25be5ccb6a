package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shellgate/shellgate/internal/domain"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "run <command>...",
		Short: "Run a command on the connected server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"command": strings.Join(args, " "),
			}
			if timeoutSeconds > 0 {
				body["timeout_seconds"] = timeoutSeconds
			}

			var result domain.CommandResult
			if err := opts.client().post(cmd.Context(), "/api/v1/run", body, &result); err != nil {
				return err
			}

			// Stdout verbatim so output stays pipeable, stderr in red on
			// the client's own stderr.
			cmd.Print(result.Stdout)
			if result.Stderr != "" {
				fmt.Fprint(os.Stderr, errString("%s", result.Stderr))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout-seconds", 0, "per-command timeout (0 = server default)")
	return cmd
}
