package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"trident/internal/domain/models"
	"trident/internal/domain/services"
)

func newSendCommand(a *app) *cobra.Command {
	var (
		conversationID string
		role           string
	)

	cmd := &cobra.Command{
		Use:   "send <content>",
		Short: "Create a message in all three backend stores",
		Long: `Send stores one message in the rag, raw and raw-model representations.
The three creates run concurrently and the command fails when any one of
them fails; copies that already committed are not rolled back.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := models.ParseRole(role)
			if err != nil {
				return err
			}

			result, err := a.messages.CreateMessage(cmd.Context(), &services.CreateMessageRequest{
				ConversationID: conversationID,
				Role:           parsed,
				Content:        strings.Join(args, " "),
			})
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, result, func(w io.Writer) {
				fmt.Fprintf(w, "Message created in conversation %s\n", conversationID)
				fmt.Fprintf(w, "  rag:       %s\n", result.RAG.ID)
				fmt.Fprintf(w, "  raw:       %s\n", result.Raw.ID)
				fmt.Fprintf(w, "  raw-model: %s\n", result.RawModel.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "conversation ID (required)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "message role: user or assistant")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}
