package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"example.com/notes-ai/internal/client"
	"example.com/notes-ai/internal/config"
)

var (
	cfg      config.Config
	apiURL   string
	token    string
	timeout  time.Duration
	debounce time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "notesctl",
	Short: "Command line client for the notes service",
	Long: `notesctl manages your notes through the notes HTTP API and lets you
ask the assistant questions about them. Set ACCESS_TOKEN to a session token.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("api-url") {
			apiURL = cfg.Editor.APIURL
		}
		if !cmd.Flags().Changed("token") {
			token = cfg.Editor.AccessToken
		}
		if !cmd.Flags().Changed("debounce") {
			debounce = cfg.Editor.Debounce
		}
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func apiClient() *client.Client {
	return client.New(apiURL, token, timeout)
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "notes API base URL (default $API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (default $ACCESS_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "per request timeout")
	rootCmd.PersistentFlags().DurationVar(&debounce, "debounce", 0, "edit quiet period before saving (default $EDITOR_DEBOUNCE)")
}
