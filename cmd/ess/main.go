package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd(cli *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "ess",
		Short:         "Employee self-service: attendance, leave and account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.start(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&cli.opts.configFile, "config", cli.opts.configFile, "YAML config file (overrides ESS_CONFIG_FILE)")
	root.PersistentFlags().StringVar(&cli.opts.envFile, "env-file", cli.opts.envFile, "dotenv file (default .env)")
	root.PersistentFlags().StringVar(&cli.opts.logLevel, "log-level", cli.opts.logLevel, "log level (overrides ESS_LOG_LEVEL)")

	root.AddCommand(
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.whoamiCmd(),
		cli.passwordCmd(),
		cli.statusCmd(),
		cli.clockCmd(true),
		cli.clockCmd(false),
		cli.leaveCmd(),
	)
	return root
}

// run executes one command line and releases what it opened.
func run(ctx context.Context, opts appOptions, args []string, stdout, stderr io.Writer) error {
	cli := &cli{opts: opts}
	defer cli.stop()

	root := newRootCmd(cli)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, appOptions{}, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
