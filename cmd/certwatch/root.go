package main

import (
	"fmt"
	"os"

	"github.com/aleister1102/certwatch/internal/config"
	"github.com/aleister1102/certwatch/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every command needs once the root pre-run has loaded it.
type app struct {
	configPath string
	cfg        *config.GlobalConfig
	log        *logger.Logger
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "certwatch",
		Short:         "Watch registered pages and files for warnings, blanking and certificate leaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")

	root.AddCommand(
		newRunCmd(a),
		newCheckCmd(a),
		newRegisterCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newHistoryCmd(a),
	)

	return root
}

func (a *app) init() error {
	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadGlobalConfig(a.configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	l, err := logger.New(cfg.LogConfig)
	if err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}

	a.cfg = cfg
	a.log = l
	a.logger = *l.GetZerolog()
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}
