package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shellgate/shellgate/internal/domain"
)

func newServersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage the server inventory",
	}
	cmd.AddCommand(
		newServersListCmd(opts),
		newServersSearchCmd(opts),
		newServersAddCmd(opts),
		newServersDeleteCmd(opts),
	)
	return cmd
}

func newServersListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all inventory entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Count   int             `json:"count"`
				Servers []domain.Server `json:"servers"`
			}
			if err := opts.client().get(cmd.Context(), "/api/v1/servers", &out); err != nil {
				return err
			}

			if out.Count == 0 {
				cmd.Println("No servers found.")
				return nil
			}
			for i, srv := range out.Servers {
				cmd.Printf("%3d  %-39s %-12s added by %s on %s\n",
					i+1, srv.Address, srv.Username, srv.AddedBy, srv.AddedAt)
			}
			return nil
		},
	}
}

func newServersSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the inventory, best match first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Query   string         `json:"query"`
				Matches []domain.Match `json:"matches"`
			}
			path := "/api/v1/servers?q=" + url.QueryEscape(args[0])
			if err := opts.client().get(cmd.Context(), path, &out); err != nil {
				return err
			}

			if len(out.Matches) == 0 {
				cmd.Println(warnString("no match for %q", out.Query))
				return nil
			}
			for _, m := range out.Matches {
				cmd.Printf("%3d  %-39s %-12s score %.1f\n",
					m.Position, m.Server.Address, m.Server.Username, m.Score)
			}
			return nil
		},
	}
}

func newServersAddCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add <address> <username>",
		Short: "Add a server after verifying its credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}

			body := map[string]string{
				"address":  args[0],
				"username": args[1],
				"password": password,
			}
			if err := opts.client().post(cmd.Context(), "/api/v1/servers", body, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ server %s added", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "login password (prompted when omitted)")
	return cmd
}

func newServersDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <position>",
		Short: "Delete the inventory entry at the 1-based position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			path := "/api/v1/servers/" + strconv.Itoa(position)
			if err := opts.client().delete(cmd.Context(), path, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ server %d deleted", position))
			return nil
		},
	}
}
