package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newAdminsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage the admin roster",
	}
	cmd.AddCommand(
		newAdminsListCmd(opts),
		newAdminsAddCmd(opts),
		newAdminsRemoveCmd(opts),
	)
	return cmd
}

func newAdminsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roster identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Count  int      `json:"count"`
				Admins []string `json:"admins"`
			}
			if err := opts.client().get(cmd.Context(), "/api/v1/admins", &out); err != nil {
				return err
			}

			if out.Count == 0 {
				cmd.Println("Roster is empty.")
				return nil
			}
			for _, identity := range out.Admins {
				cmd.Println(identity)
			}
			return nil
		},
	}
}

func newAdminsAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <identity>",
		Short: "Add an identity to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"identity": args[0]}
			if err := opts.client().post(cmd.Context(), "/api/v1/admins", body, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ %s added to roster", args[0]))
			return nil
		},
	}
}

func newAdminsRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identity>",
		Short: "Remove an identity from the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/admins/" + url.PathEscape(args[0])
			if err := opts.client().delete(cmd.Context(), path, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ %s removed from roster", args[0]))
			return nil
		},
	}
}
