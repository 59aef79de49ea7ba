// Package main is the entry point for cc-gate.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yaml"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cc-gate",
	Short: "Request authorizer for multi-tenant LLM gateways",
	Long: `cc-gate is the authorization sidecar for a multi-tenant LLM gateway.
It verifies bearer tokens against the identity provider, falls back to
salted API-key lookup, applies admin and endpoint gating policy, and
answers every request with an IAM-style policy document.`,
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/cc-gate/"+defaultConfigFile+")")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
