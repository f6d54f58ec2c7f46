package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newServerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Show or change the saved backend address",
	}

	cmd.AddCommand(
		newServerShowCommand(a),
		newServerSetCommand(a),
	)

	return cmd
}

func newServerShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the backend address commands will use",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.server)
			return nil
		},
	}
}

func newServerSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <url>",
		Short: "Save the backend address for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := strings.TrimRight(args[0], "/")
			if _, err := url.ParseRequestURI(addr); err != nil {
				return fmt.Errorf("invalid server address %q: %w", args[0], err)
			}

			if err := a.store.SaveServerURL(addr); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Server address saved to %s\n", a.store.Path())
			return nil
		},
	}
}
