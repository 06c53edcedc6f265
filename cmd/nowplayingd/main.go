package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/config"
	"nowplaying/internal/daemonrun"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type daemonFlags struct {
	configPath  string
	socketPath  string
	logLevel    string
	development bool
}

func newRootCommand() *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:           "nowplayingd",
		Short:         "Run the nowplaying daemon in the foreground",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    flags.logLevel,
				Development: flags.development,
			})
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&flags.socketPath, "socket", "", "Override the IPC socket path")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&flags.development, "development", false, "Use development logging (source locations, debug level)")
	return cmd
}

func loadConfig(flags daemonFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(flags.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if socket := strings.TrimSpace(flags.socketPath); socket != "" {
		expanded, err := config.ExpandPath(socket)
		if err != nil {
			return nil, fmt.Errorf("resolve socket path: %w", err)
		}
		cfg.Paths.SocketPath = expanded
	}
	return cfg, nil
}
