package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harmoniqs/tasksmd-sync/internal/github"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate a GitHub token and store it for later runs",
	Long: `Validates a personal access token against the GitHub API and saves it
to ~/.tasksmd-sync/token, where the sync command picks it up when no
environment token is set.

Examples:
  tasksync login --token ghp_xxx
  echo ghp_xxx | tasksync login`,
	RunE: runLogin,
}

var loginToken string

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "GitHub personal access token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := loginToken

	// If no --token flag, read from stdin.
	if token == "" {
		fi, _ := os.Stdin.Stat()
		if fi.Mode()&os.ModeCharDevice != 0 {
			fmt.Print("Enter GitHub token: ")
		}
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			token = strings.TrimSpace(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
	}

	if token == "" {
		return fmt.Errorf("no token provided; use --token or pipe via stdin")
	}

	username, err := github.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}

	if err := github.SaveToken(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	fmt.Printf("Authenticated as @%s. Token saved.\n", username)
	return nil
}
