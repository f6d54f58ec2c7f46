package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trident/internal/api"
	"trident/internal/auth"
	"trident/internal/cache"
	"trident/internal/config"
	"trident/internal/domain/models"
	"trident/internal/domain/services"
	"trident/internal/service/ingest"
	"trident/internal/service/messages"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type console struct {
	ctx      context.Context
	server   string
	messages services.MessageService
	ingest   services.IngestService
	scanner  *bufio.Scanner
	logger   *slog.Logger
}

// setupLogger creates a logger that writes to both console and file
func setupLogger() (*slog.Logger, string, error) {
	logsDir := "logs"
	if home, err := os.UserHomeDir(); err == nil {
		logsDir = filepath.Join(home, ".trident", "logs")
	}

	logFile, err := config.SetupLogFile(logsDir, 5)
	if err != nil {
		return nil, "", err
	}

	// Console: WARN level so the menu stays readable
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})

	// File: DEBUG level, every backend call ends up here
	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	logger := slog.New(&multiHandler{
		handlers: []slog.Handler{consoleHandler, fileHandler},
	})
	return logger, logFile.Name(), nil
}

// multiHandler writes to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

func main() {
	// Setup dual logger (console + file)
	logger, logFile, err := setupLogger()
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("session started", "log_file", logFile)

	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := auth.NewFileStore()
	if err != nil {
		logger.Error("failed to open config store", "error", err)
		fmt.Printf("%s❌ Failed to open config store: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	// Server address: environment, saved config, default
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = store.ServerURL()
	}
	if serverURL == "" {
		serverURL = config.DefaultServerURL
	}

	// A token from the environment overrides the stored one
	var tokens auth.TokenProvider = store
	if cfg.Token != "" {
		tokens = auth.StaticProvider(cfg.Token)
	}
	if _, ok := tokens.Token(); !ok {
		logger.Warn("no usable credential configured")
		fmt.Printf("%s⚠ No token configured; authenticated operations will fail%s\n", colorYellow, colorReset)
	}

	client := api.NewClientWithConfig(serverURL, tokens, cfg.Timeout, logger)
	results := cache.New()

	c := &console{
		ctx:      context.Background(),
		server:   serverURL,
		messages: messages.NewService(client, results, logger),
		ingest:   ingest.NewService(client, tokens, logger),
		scanner:  bufio.NewScanner(os.Stdin),
		logger:   logger,
	}

	c.run()
}

func (c *console) run() {
	c.logger.Info("console started", "server", c.server)

	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	fmt.Printf("%s║       Trident Backend Console        ║%s\n", colorCyan, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	fmt.Printf("%sServer: %s%s\n\n", colorBlue, c.server, colorReset)

	for {
		fmt.Println("\n" + strings.Repeat("─", 40))
		fmt.Println("Main Menu:")
		fmt.Println("1. Send message")
		fmt.Println("2. List conversation messages")
		fmt.Println("3. List message IDs")
		fmt.Println("4. Get message")
		fmt.Println("5. Delete message")
		fmt.Println("6. Upload document")
		fmt.Println("7. Exit")
		fmt.Print("\nSelect option (1-7): ")

		choice := c.readLine()
		fmt.Println() // Extra line for spacing

		c.logger.Debug("menu selection", "choice", choice)

		switch choice {
		case "1":
			c.sendMessage()
		case "2":
			c.listMessages()
		case "3":
			c.listMessageIDs()
		case "4":
			c.getMessage()
		case "5":
			c.deleteMessage()
		case "6":
			c.uploadDocument()
		case "7":
			c.logger.Info("console exiting")
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		default:
			c.logger.Warn("invalid menu choice", "choice", choice)
			fmt.Printf("%s⚠ Invalid choice. Please enter 1-7.%s\n", colorYellow, colorReset)
		}
	}
}

func (c *console) sendMessage() {
	fmt.Printf("%s=== Send Message ===%s\n\n", colorCyan, colorReset)

	fmt.Print("Conversation ID: ")
	conversationID := c.readLine()
	if conversationID == "" {
		fmt.Printf("%s⚠ Conversation ID cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	fmt.Printf("Role (user/assistant) [%s]: ", models.RoleUser)
	roleInput := c.readLine()
	if roleInput == "" {
		roleInput = string(models.RoleUser)
	}
	role, err := models.ParseRole(roleInput)
	if err != nil {
		fmt.Printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
		return
	}

	fmt.Print("Content: ")
	content := c.readLine()
	if content == "" {
		fmt.Printf("%s⚠ Content cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	fmt.Printf("\n%s⏳ Creating message in all three stores...%s\n", colorBlue, colorReset)
	c.logger.Debug("creating message",
		"conversation_id", conversationID,
		"role", role,
		"length", len(content),
	)

	result, err := c.messages.CreateMessage(c.ctx, &services.CreateMessageRequest{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	})
	if err != nil {
		c.logger.Error("failed to create message",
			"error", err,
			"conversation_id", conversationID,
		)
		fmt.Printf("%s❌ Failed to create message: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("%s✓ Message committed to all three stores%s\n", colorGreen, colorReset)
	fmt.Printf("  rag:       %s\n", result.RAG.ID)
	fmt.Printf("  raw:       %s\n", result.Raw.ID)
	fmt.Printf("  raw-model: %s\n", result.RawModel.ID)
}

func (c *console) listMessages() {
	fmt.Printf("%s=== List Messages ===%s\n\n", colorCyan, colorReset)

	fmt.Print("Conversation ID: ")
	conversationID := c.readLine()
	if conversationID == "" {
		fmt.Printf("%s⚠ Conversation ID cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	skip := c.readInt("Skip", 0)
	limit := c.readInt("Limit", config.DefaultListLimit)

	page, err := c.messages.ListMessages(c.ctx, conversationID, skip, limit)
	if err != nil {
		c.logger.Error("failed to list messages",
			"error", err,
			"conversation_id", conversationID,
		)
		fmt.Printf("%s❌ Failed to list messages: %v%s\n", colorRed, err, colorReset)
		return
	}

	if len(page) == 0 {
		fmt.Printf("%s⚠ No messages%s\n", colorYellow, colorReset)
		return
	}

	fmt.Printf("\n%s--- Conversation %s ---%s\n", colorCyan, conversationID, colorReset)
	for i := range page {
		c.displayMessage(&page[i])
		fmt.Println()
	}
}

func (c *console) listMessageIDs() {
	fmt.Printf("%s=== List Message IDs ===%s\n\n", colorCyan, colorReset)

	fmt.Print("Conversation ID: ")
	conversationID := c.readLine()
	if conversationID == "" {
		fmt.Printf("%s⚠ Conversation ID cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	ids, err := c.messages.ListMessageIDs(c.ctx, conversationID)
	if err != nil {
		c.logger.Error("failed to list message ids",
			"error", err,
			"conversation_id", conversationID,
		)
		fmt.Printf("%s❌ Failed to list message IDs: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("%d message(s):\n", len(ids))
	for _, id := range ids {
		fmt.Println(id)
	}
}

func (c *console) getMessage() {
	fmt.Printf("%s=== Get Message ===%s\n\n", colorCyan, colorReset)

	fmt.Print("Message ID: ")
	messageID := c.readLine()
	if messageID == "" {
		fmt.Printf("%s⚠ Message ID cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	msg, err := c.messages.GetMessage(c.ctx, messageID)
	if err != nil {
		c.logger.Error("failed to get message", "error", err, "id", messageID)
		fmt.Printf("%s❌ Failed to get message: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Println()
	c.displayMessage(msg)
}

func (c *console) deleteMessage() {
	fmt.Printf("%s=== Delete Message ===%s\n\n", colorCyan, colorReset)

	fmt.Print("Message ID: ")
	messageID := c.readLine()
	if messageID == "" {
		fmt.Printf("%s⚠ Message ID cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	if err := c.messages.DeleteMessage(c.ctx, messageID); err != nil {
		c.logger.Error("failed to delete message", "error", err, "id", messageID)
		fmt.Printf("%s❌ Failed to delete message: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("%s✓ Message %s deleted%s\n", colorGreen, messageID, colorReset)
}

func (c *console) uploadDocument() {
	fmt.Printf("%s=== Upload Document ===%s\n\n", colorCyan, colorReset)
	fmt.Printf("Accepted file types: %s\n\n", strings.Join(ingest.AllowedExtensions(), ", "))

	fmt.Print("File path: ")
	path := c.readLine()
	if path == "" {
		fmt.Printf("%s⚠ File path cannot be empty%s\n", colorYellow, colorReset)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	defer func() { _ = file.Close() }() // Error ignored: file only read

	req := services.NewUploadRequest(filepath.Base(path), file)

	fmt.Printf("Topic [%s]: ", services.DefaultTopic)
	if topic := c.readLine(); topic != "" {
		req.Topic = topic
	}

	req.StartPage = c.readInt("Start page", services.DefaultStartPage)

	fmt.Print("End page (press enter for end of document): ")
	if input := c.readLine(); input != "" {
		if v, err := strconv.Atoi(input); err == nil {
			req.EndPage = &v
		} else {
			fmt.Printf("%s⚠ Invalid number, ingesting to end of document%s\n", colorYellow, colorReset)
		}
	}

	fmt.Printf("\n%s⏳ Uploading %s...%s\n", colorBlue, req.Filename, colorReset)
	out := c.ingest.Upload(c.ctx, req)
	if !out.OK {
		fmt.Printf("%s❌ %s%s\n", colorRed, out.Message, colorReset)
		return
	}

	fmt.Printf("%s✓ %s%s\n", colorGreen, out.Message, colorReset)
}

func (c *console) displayMessage(m *models.Message) {
	roleColor := colorBlue
	if m.Role == models.RoleAssistant {
		roleColor = colorGreen
	}

	fmt.Printf("%s[%s]%s %s\n", roleColor, strings.ToUpper(string(m.Role)), colorReset, m.ID)
	fmt.Println(m.Content)
	if !m.CreatedAt.IsZero() {
		fmt.Printf("%s  %s%s\n", colorBlue, m.CreatedAt.Format(time.RFC3339), colorReset)
	}
}

func (c *console) readLine() string {
	if !c.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(c.scanner.Text())
}

// readInt prompts for a number, falling back to def on empty or invalid
// input
func (c *console) readInt(prompt string, def int) int {
	fmt.Printf("%s [%d]: ", prompt, def)
	input := c.readLine()
	if input == "" {
		return def
	}
	v, err := strconv.Atoi(input)
	if err != nil {
		fmt.Printf("%s⚠ Invalid number, using %d%s\n", colorYellow, def, colorReset)
		return def
	}
	return v
}
