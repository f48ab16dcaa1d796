package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/literaryvoice/literary-voice/internal/client"
	"github.com/literaryvoice/literary-voice/internal/fetcher"
)

var version = "dev"

var flagAPIURL string

var rootCmd = &cobra.Command{
	Use:   "literaryvoice",
	Short: "AI reading companion for book reviews",
	Long:  "literaryvoice looks up a book's most-liked public reviews and reformats the best one into a structured summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionPath := SessionPath()
		session, err := LoadSession(sessionPath)
		if err != nil {
			return err
		}

		shell := NewShell(
			client.New(apiURL()),
			fetcher.New(),
			session,
			sessionPath,
			cmd.InOrStdin(),
			cmd.OutOrStdout(),
		)
		return shell.Run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "literaryvoice %s\n", version)
	},
}

var (
	flagGrantEmail  string
	flagGrantAmount int64
	flagGrantKey    string
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Add credits to an account (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		adminKey := flagGrantKey
		if adminKey == "" {
			adminKey = os.Getenv("LITERARYVOICE_ADMIN_KEY")
		}
		if adminKey == "" {
			return fmt.Errorf("admin key required (--admin-key or LITERARYVOICE_ADMIN_KEY)")
		}

		balance, err := client.New(apiURL()).AddCredits(cmd.Context(), flagGrantEmail, flagGrantAmount, adminKey)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d credits added; new balance: %d\n", flagGrantAmount, balance)
		return nil
	},
}

func apiURL() string {
	if flagAPIURL != "" {
		return flagAPIURL
	}
	if url := os.Getenv("LITERARYVOICE_API_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Literary Voice API base URL")

	grantCmd.Flags().StringVar(&flagGrantEmail, "email", "", "account email")
	grantCmd.Flags().Int64Var(&flagGrantAmount, "amount", 0, "credits to add")
	grantCmd.Flags().StringVar(&flagGrantKey, "admin-key", "", "admin key (or LITERARYVOICE_ADMIN_KEY)")
	_ = grantCmd.MarkFlagRequired("email")
	_ = grantCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(grantCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
