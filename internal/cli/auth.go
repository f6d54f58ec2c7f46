package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trident/internal/auth"
)

func newAuthCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored access token",
	}

	cmd.AddCommand(
		newAuthLoginCommand(a),
		newAuthStatusCommand(a),
		newAuthLogoutCommand(a),
	)

	return cmd
}

func newAuthLoginCommand(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				read, err := promptToken(cmd)
				if err != nil {
					return err
				}
				token = read
			}
			if token == "" {
				return errors.New("no token provided")
			}

			if auth.Expired(token, time.Now()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: this token is already expired")
			}

			if err := a.store.SaveToken(token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", a.store.Path())
			if claims, err := auth.ParseClaims(token); err == nil && claims.Email != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", claims.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (prompted for when omitted)")

	return cmd
}

// promptToken reads a token from stdin, hiding the input when stdin is a
// terminal
func promptToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Token: ")

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newAuthStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored token and who it belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			token := a.store.StoredToken()
			if token == "" {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			claims, err := auth.ParseClaims(token)
			if err != nil {
				// Opaque tokens still authenticate; there is just
				// nothing to display about them
				fmt.Fprintln(out, "Logged in with an opaque token")
				return nil
			}

			if id := claims.GetUserID(); id != "" {
				fmt.Fprintf(out, "User:    %s\n", id)
			}
			if claims.Email != "" {
				fmt.Fprintf(out, "Email:   %s\n", claims.Email)
			}
			if claims.ExpiresAt != nil {
				state := "valid"
				if auth.Expired(token, time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(out, "Expires: %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
			}
			return nil
		},
	}
}

func newAuthLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
