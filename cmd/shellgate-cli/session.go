package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shellgate/shellgate/internal/domain"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the single remote session",
	}
	cmd.AddCommand(
		newSessionStatusCmd(opts),
		newSessionConnectCmd(opts),
		newSessionDisconnectCmd(opts),
	)
	return cmd
}

func newSessionStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connection slot state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status domain.SessionStatus
			if err := opts.client().get(cmd.Context(), "/api/v1/session", &status); err != nil {
				return err
			}

			if !status.Connected {
				cmd.Println("Not connected.")
				return nil
			}
			cmd.Println(okString("Connected to %s as %s (since %s)",
				status.Address, status.Username, domain.Timestamp(status.ConnectedAt)))
			return nil
		},
	}
}

func newSessionConnectCmd(opts *rootOptions) *cobra.Command {
	var (
		address  string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "connect [position]",
		Short: "Connect to a server, by inventory position or explicit credentials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}

			if len(args) == 1 {
				position, err := strconv.Atoi(args[0])
				if err != nil {
					return err
				}
				body["position"] = position
			} else {
				if password == "" {
					var err error
					if password, err = promptPassword("Password: "); err != nil {
						return err
					}
				}
				body["address"] = address
				body["username"] = username
				body["password"] = password
			}

			var out struct {
				Connected bool                 `json:"connected"`
				Status    domain.SessionStatus `json:"status"`
			}
			if err := opts.client().post(cmd.Context(), "/api/v1/session/connect", body, &out); err != nil {
				return err
			}
			cmd.Println(okString("✅ connected to %s as %s", out.Status.Address, out.Status.Username))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "server address (when not connecting by position)")
	cmd.Flags().StringVar(&username, "username", "", "login username (when not connecting by position)")
	cmd.Flags().StringVar(&password, "password", "", "login password (prompted when omitted)")
	return cmd
}

func newSessionDisconnectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Release the connection slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Disconnected bool `json:"disconnected"`
			}
			if err := opts.client().post(cmd.Context(), "/api/v1/session/disconnect", nil, &out); err != nil {
				return err
			}

			if out.Disconnected {
				cmd.Println(okString("✅ disconnected"))
			} else {
				cmd.Println(warnString("no session to disconnect"))
			}
			return nil
		},
	}
}
