// Package main is the entry point for the rpg-narrator server and its test client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-narrator/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "rpg-narrator",
	Short: "RPG Narrator gRPC server",
	Long: `RPG Narrator runs an AI-narrated single-player adventure with persistent saves,
asynchronous PvP battles, admin mail, world chat and a leaderboard.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
