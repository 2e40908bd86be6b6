package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/norandom/x-likes-scraper/pkg/auth"
	"github.com/norandom/x-likes-scraper/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored X sessions",
	Long: `Store and manage X session credentials.

Sessions are saved to the system keyring when one is available, otherwise to
an encrypted file in the config directory. The auth_token and ct0 cookie
values come from your browser's developer tools (Application > Cookies >
x.com).`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "default"
		if len(args) == 1 {
			name = args[0]
		}

		authToken, err := readSecret("auth_token cookie value: ")
		if err != nil {
			return err
		}
		csrfToken, err := readSecret("ct0 cookie value: ")
		if err != nil {
			return err
		}

		manager, err := auth.NewManager()
		if err != nil {
			return err
		}

		session := &auth.Session{
			Name:      name,
			AuthToken: strings.TrimSpace(authToken),
			CSRFToken: strings.TrimSpace(csrfToken),
		}
		if err := manager.Store(session); err != nil {
			return err
		}

		ui.PrintSuccess(fmt.Sprintf("Session %q stored", name))
		return nil
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			return err
		}

		sessions, err := manager.List()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			ui.PrintWarning("No stored sessions")
			return nil
		}

		for _, session := range sessions {
			masked := auth.SanitizeSession(session)
			ui.PrintInfo(masked.Name, fmt.Sprintf("auth_token=%s ct0=%s", masked.AuthToken, masked.CSRFToken))
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Delete a stored session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "default"
		if len(args) == 1 {
			name = args[0]
		}

		manager, err := auth.NewManager()
		if err != nil {
			return err
		}

		if err := manager.Delete(name); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Session %q deleted", name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// readSecret prompts for a value without echoing it when stdin is a
// terminal.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		value, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(value), nil
	}

	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}
