package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/config"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
	)

	root := &cobra.Command{
		Use:   "colabplan",
		Short: "Collaborative planning assistant for the Semana da Computação",
		Long: `colabplan runs a shared planning session: participants post messages under a
stage (brainstorm, research, draft, review) and an LLM keeps a collaborative
plan up to date, optionally grounded on uploaded PDFs.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides COLAB_CONFIG_FILE)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		if cfgFile != "" {
			if err := os.Setenv("COLAB_CONFIG_FILE", cfgFile); err != nil {
				return nil, err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newChatCmd(load))
	return root
}

type configLoader func(cmd *cobra.Command) (*config.Config, error)

// setupLogging routes logs to stderr so the chat transcript on stdout stays clean.
func setupLogging(cfg *config.Config) {
	observability.Configure(os.Stderr, cfg.LogLevel)
}
