package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"trident/internal/config"
)

func newMessagesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Browse and manage stored messages",
	}

	cmd.AddCommand(
		newMessagesListCommand(a),
		newMessagesIDsCommand(a),
		newMessagesGetCommand(a),
		newMessagesDeleteCommand(a),
	)

	return cmd
}

func newMessagesListCommand(a *app) *cobra.Command {
	var (
		skip  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list <conversation-id>",
		Short: "List the messages of a conversation, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.messages.ListMessages(cmd.Context(), args[0], skip, limit)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, page, func(w io.Writer) {
				if len(page) == 0 {
					fmt.Fprintln(w, "No messages")
					return
				}
				for _, m := range page {
					fmt.Fprintf(w, "%s  [%s]  %s\n", m.ID, m.Role, m.Content)
				}
			})
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of messages to skip")
	cmd.Flags().IntVar(&limit, "limit", config.DefaultListLimit, "maximum number of messages to return")

	return cmd
}

func newMessagesIDsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ids <conversation-id>",
		Short: "List the message IDs of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.messages.ListMessageIDs(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, ids, func(w io.Writer) {
				for _, id := range ids {
					fmt.Fprintln(w, id)
				}
			})
		},
	}
}

func newMessagesGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <message-id>",
		Short: "Fetch a single message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.messages.GetMessage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, msg, func(w io.Writer) {
				fmt.Fprintf(w, "ID:           %s\n", msg.ID)
				fmt.Fprintf(w, "Conversation: %s\n", msg.ConversationID)
				fmt.Fprintf(w, "Role:         %s\n", msg.Role)
				if !msg.CreatedAt.IsZero() {
					fmt.Fprintf(w, "Created:      %s\n", msg.CreatedAt.Format(time.RFC3339))
				}
				fmt.Fprintf(w, "\n%s\n", msg.Content)
			})
		},
	}
}

func newMessagesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.messages.DeleteMessage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message %s deleted\n", args[0])
			return nil
		},
	}
}
