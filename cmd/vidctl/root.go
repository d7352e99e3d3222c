package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timmy/facetrail/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vidctl",
	Short: "Operator tooling for the face detection pipeline",
	Long: `vidctl uploads videos into the pipeline bucket, replays upload and
completion events against a running processor, and reports the state a
video reached in the store.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
