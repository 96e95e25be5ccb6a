package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shellgate/shellgate/internal/version"
)

var (
	okString   = color.New(color.FgGreen).SprintfFunc()
	warnString = color.New(color.FgYellow).SprintfFunc()
	errString  = color.New(color.FgRed).SprintfFunc()
)

type rootOptions struct {
	server    string
	requester string
	token     string
	timeout   time.Duration
}

func (o *rootOptions) client() *client {
	return newClient(o.server, o.requester, o.token, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "shellgate-cli",
		Short:         "Operator client for the shellgate command gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("SHELLGATE_CLI_SERVER", "http://localhost:8222"), "gateway base URL")
	flags.StringVar(&opts.requester, "requester", envOr("SHELLGATE_CLI_REQUESTER", ""), "identity to act as (roster-checked server side)")
	flags.StringVar(&opts.token, "token", envOr("SHELLGATE_CLI_TOKEN", ""), "API bearer token")
	flags.DurationVar(&opts.timeout, "timeout", 60*time.Second, "HTTP request timeout")

	root.AddCommand(
		newServersCmd(opts),
		newSessionCmd(opts),
		newRunCmd(opts),
		newBookCmd(opts),
		newAdminsCmd(opts),
		newStatusCmd(opts),
		newAuditCmd(opts),
		newReloadCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show client version info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("shellgate-cli %s (commit=%s, built=%s, go=%s)\n",
				version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errString("error: %v", err))
		os.Exit(1)
	}
}
