package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trident/internal/domain/services"
	"trident/internal/service/ingest"
)

func newUploadCommand(a *app) *cobra.Command {
	var (
		startPage int
		endPage   int
		topic     string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document for ingestion",
		Long: fmt.Sprintf(`Upload submits a document to the backend ingestion pipeline.

Accepted file types: %s.`, strings.Join(ingest.AllowedExtensions(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = file.Close() }() // Error ignored: file only read

			req := services.NewUploadRequest(filepath.Base(args[0]), file)
			req.StartPage = startPage
			req.Topic = topic
			if cmd.Flags().Changed("end-page") {
				req.EndPage = &endPage
			}

			out := a.ingest.Upload(cmd.Context(), req)
			if !out.OK {
				return errors.New(out.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			return nil
		},
	}

	cmd.Flags().IntVar(&startPage, "start-page", services.DefaultStartPage, "first page to ingest")
	cmd.Flags().IntVar(&endPage, "end-page", 0, "last page to ingest (default: end of document)")
	cmd.Flags().StringVar(&topic, "topic", services.DefaultTopic, "topic the document belongs to")

	return cmd
}
