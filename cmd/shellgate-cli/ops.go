package main

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shellgate/shellgate/internal/audit"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show gateway component health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Mode       string `json:"mode"`
				Components map[string]struct {
					OK     bool   `json:"ok"`
					Impact string `json:"impact"`
					Error  string `json:"error"`
				} `json:"components"`
			}
			if err := opts.client().get(cmd.Context(), "/api/v1/status", &out); err != nil {
				return err
			}

			cmd.Printf("mode: %s\n", out.Mode)

			names := make([]string, 0, len(out.Components))
			for name := range out.Components {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				component := out.Components[name]
				state := okString("ok")
				if !component.OK {
					state = errString("down (%s)", component.Error)
				}
				if component.Impact != "" {
					cmd.Printf("  %-10s %s - %s\n", name, state, component.Impact)
				} else {
					cmd.Printf("  %-10s %s\n", name, state)
				}
			}
			return nil
		},
	}
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Count  int           `json:"count"`
				Events []audit.Event `json:"events"`
			}
			path := "/api/v1/audit?limit=" + strconv.Itoa(limit)
			if err := opts.client().get(cmd.Context(), path, &out); err != nil {
				return err
			}

			if out.Count == 0 {
				cmd.Println("No audit events.")
				return nil
			}
			for _, event := range out.Events {
				verdict := okString("ok")
				if !event.OK {
					verdict = errString("denied")
				}
				cmd.Printf("%s  %-16s %-18s %s %s\n",
					event.Time, event.Requester, event.Action, verdict, event.Target)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "number of events to fetch")
	return cmd
}

func newReloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Trigger an immediate policy file reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().post(cmd.Context(), "/api/v1/reload", nil, nil); err != nil {
				return err
			}
			cmd.Println(okString("✅ policy reload triggered"))
			return nil
		},
	}
}
