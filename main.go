package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	configx "github.com/tanpawarit/careermate/pkg/config"
	logx "github.com/tanpawarit/careermate/pkg/logger"
)

var version = "dev"

type rootFlags struct {
	envFile    string
	debug      bool
	prettyLogs bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "careermate",
		Short: "CareerMate, a multi-agent career assistant",
		Long: "CareerMate routes each question to a skill gap, job finder or course " +
			"recommender specialist and prints a structured answer.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg, err := configx.New[logx.Config]("LOG", configx.WithEnvFile(flags.envFile))
			if err != nil {
				return fmt.Errorf("%w: %v", contractx.ErrConfig, err)
			}
			if flags.debug {
				logCfg.Debug = true
			}
			if flags.prettyLogs {
				logCfg.PrettyFormat = true
			}
			logx.Init(*logCfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env", "", "path to .env file (default ./.env when present)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logs")
	cmd.PersistentFlags().BoolVar(&flags.prettyLogs, "pretty-logs", false, "human readable logs on stderr")

	cmd.AddCommand(newChatCmd(flags))
	cmd.AddCommand(newDoctorCmd(flags))
	cmd.AddCommand(newToolsCmd())

	return cmd
}
