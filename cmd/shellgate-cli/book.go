package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newBookCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "book",
		Aliases: []string{"commands"},
		Short:   "Manage the saved-command book",
	}
	cmd.AddCommand(
		newBookListCmd(opts),
		newBookAddCmd(opts),
		newBookRemoveCmd(opts),
	)
	return cmd
}

func newBookListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Count    int      `json:"count"`
				Commands []string `json:"commands"`
			}
			if err := opts.client().get(cmd.Context(), "/api/v1/commands", &out); err != nil {
				return err
			}

			if out.Count == 0 {
				cmd.Println("No saved commands.")
				return nil
			}
			for i, command := range out.Commands {
				cmd.Printf("%3d  %s\n", i+1, command)
			}
			return nil
		},
	}
}

func newBookAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <command>...",
		Short: "Save a command (policy-checked before storing)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"command": strings.Join(args, " ")}
			if err := opts.client().post(cmd.Context(), "/api/v1/commands", body, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ command saved"))
			return nil
		},
	}
}

func newBookRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove the saved command at the 1-based position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			path := "/api/v1/commands/" + strconv.Itoa(position)
			if err := opts.client().delete(cmd.Context(), path, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ command %d removed", position))
			return nil
		},
	}
}
