package cmd

import (
	"os"

	"faucetd/logx"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "faucetd",
	Short: "Token faucet ledger CLI",
	Long:  "Command line interface for running and managing a token faucet ledger node.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/faucetd.yml", "Path to the faucetd config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
