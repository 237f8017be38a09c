package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
	"github.com/bsglab/workshoptrack/internal/repository/sqlite"
	"github.com/bsglab/workshoptrack/internal/service/ingest"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
)

// EntryBot is the shop-floor surface: operators pick a station once, then
// scan or type item codes into its ledger.
type EntryBot struct {
	client    telegram.Client
	ingest    *ingest.Service
	operators OperatorStore
	registry  *models.StationRegistry
	sessions  *SessionManager
	logger    *zap.Logger
}

// NewEntryBot wires the entry bot.
func NewEntryBot(client telegram.Client, ingestSvc *ingest.Service, operators OperatorStore, registry *models.StationRegistry, logger *zap.Logger) *EntryBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryBot{
		client:    client,
		ingest:    ingestSvc,
		operators: operators,
		registry:  registry,
		sessions:  NewSessionManager(),
		logger:    logger,
	}
}

// HandleUpdate routes one webhook update through the entry conversation.
func (b *EntryBot) HandleUpdate(ctx context.Context, update models.Update) error {
	operatorID, ok := senderID(update)
	if !ok {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if text == "" && len(msg.Photo) > 0 {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID: chatID,
			Text:   "🖼 I cannot read QR codes from photos. Please type the item code instead.",
		})
	}

	session := b.sessions.Get(chatID)

	switch {
	case text == "/start":
		return b.handleStart(ctx, chatID, operatorID, update.Message.From.DisplayName())
	case session.Step == StepAwaitingFullName:
		return b.handleRegistrationInput(ctx, chatID, operatorID, text)
	case text == "/help":
		return b.handleHelp(ctx, chatID)
	}

	_, registered, err := ensureRegistered(ctx, b.operators, operatorID)
	if err != nil {
		b.logger.Error("registration lookup failed", zap.Int64("operator", operatorID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}
	if !registered {
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgRegistrationNeeded})
	}

	switch {
	case strings.HasPrefix(text, "/sent"):
		return b.handleSent(ctx, chatID, text)
	case strings.HasPrefix(text, "/received"):
		return b.handleReceived(ctx, chatID, text)
	}

	if _, ok := b.registry.Lookup(text); ok {
		session.Station = text
		session.Step = StepNone
		b.sessions.Update(chatID, session)
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     fmt.Sprintf("✅ Station selected: *%s*\nScan or type item codes now.", text),
			Markdown: true,
		})
	}

	return b.handleScan(ctx, chatID, operatorID, session, text)
}

func (b *EntryBot) handleStart(ctx context.Context, chatID, operatorID int64, displayName string) error {
	b.sessions.Clear(chatID)

	op, registered, err := ensureRegistered(ctx, b.operators, operatorID)
	if err != nil {
		b.logger.Error("registration lookup failed", zap.Int64("operator", operatorID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	if !registered {
		b.sessions.Update(chatID, Session{Step: StepAwaitingFullName})
		text := fmt.Sprintf("👋 Hello, %s!\n\nRegistration is required before scanning.\n%s", displayName, msgAskFullName)
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: text, Markdown: true})
	}

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("🤖 Welcome back, %s!\nChoose your station:", op.FullName),
		Keyboard: stationKeyboard(b.registry),
	})
}

func (b *EntryBot) handleRegistrationInput(ctx context.Context, chatID, operatorID int64, text string) error {
	if !validFullName(text) {
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgBadFullName, Markdown: true})
	}

	if err := b.operators.RegisterOperator(ctx, models.Operator{TelegramID: operatorID, FullName: text}); err != nil {
		b.logger.Error("operator registration failed", zap.Int64("operator", operatorID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	b.sessions.Update(chatID, Session{})
	b.logger.Info("operator registered", zap.Int64("operator", operatorID))

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("✅ Registration complete, %s!\nChoose your station:", text),
		Keyboard: stationKeyboard(b.registry),
	})
}

func (b *EntryBot) handleHelp(ctx context.Context, chatID int64) error {
	help := "📖 *Entry bot*\n\n" +
		"• Pick your station from the keyboard, then scan or type item codes.\n" +
		"• Repeated scans of the same code update the existing entry.\n" +
		"• `/sent <item> <vendor>` — item handed to an outsourcing vendor.\n" +
		"• `/received <item>` — item returned from the vendor."
	return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: help, Markdown: true})
}

func (b *EntryBot) handleSent(ctx context.Context, chatID int64, text string) error {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "❗ Usage: `/sent <item> <vendor>`, e.g. `/sent 152/1.28 GlassWorks`",
			Markdown: true,
		})
	}

	item := fields[1]
	vendor := strings.Join(fields[2:], " ")

	if _, err := b.ingest.SendToOutsourcing(ctx, item, vendor); err != nil {
		if errors.Is(err, models.ErrInvalidIdentifier) {
			return reply(ctx, b.client, telegram.SendMessageRequest{
				ChatID: chatID,
				Text:   "❗ Please enter a valid item code (digits, periods, slashes and underscores).",
			})
		}
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("📤 Item `%s` marked as sent to *%s*.", item, vendor),
		Markdown: true,
	})
}

func (b *EntryBot) handleReceived(ctx context.Context, chatID int64, text string) error {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "❗ Usage: `/received <item>`, e.g. `/received 152/1.28`",
			Markdown: true,
		})
	}

	item := fields[1]
	if err := b.ingest.ReceiveFromOutsourcing(ctx, item); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidIdentifier):
			return reply(ctx, b.client, telegram.SendMessageRequest{
				ChatID: chatID,
				Text:   "❗ Please enter a valid item code (digits, periods, slashes and underscores).",
			})
		case errors.Is(err, sqlite.ErrNotSent):
			return reply(ctx, b.client, telegram.SendMessageRequest{
				ChatID:   chatID,
				Text:     fmt.Sprintf("❗ Item `%s` was never sent to outsourcing.", item),
				Markdown: true,
			})
		default:
			return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
		}
	}

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("📥 Item `%s` marked as received from outsourcing.", item),
		Markdown: true,
	})
}

func (b *EntryBot) handleScan(ctx context.Context, chatID, operatorID int64, session Session, text string) error {
	if session.Station == "" {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "❗ Choose your station first:",
			Keyboard: stationKeyboard(b.registry),
		})
	}

	result, err := b.ingest.RecordObservation(ctx, session.Station, text, operatorID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidIdentifier) {
			return reply(ctx, b.client, telegram.SendMessageRequest{
				ChatID: chatID,
				Text:   "❗ Please enter a valid item code (digits, periods, slashes and underscores).",
			})
		}
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	verb := "saved"
	if result == models.ResultUpdated {
		verb = "updated"
	}
	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("✅ Entry %s for station *%s*:\n`%s`", verb, session.Station, text),
		Markdown: true,
	})
}

// stationKeyboard lays the registry out two stations per row.
func stationKeyboard(registry *models.StationRegistry) [][]string {
	names := registry.Names()
	rows := make([][]string, 0, (len(names)+1)/2)
	for i := 0; i < len(names); i += 2 {
		end := i + 2
		if end > len(names) {
			end = len(names)
		}
		rows = append(rows, names[i:end])
	}
	return rows
}
