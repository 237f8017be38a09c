package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
	"github.com/bsglab/workshoptrack/internal/service/search"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
)

// packagingButton is the reply-keyboard shortcut for the packaged-items lookup.
const packagingButton = "Packaging"

// AnalystBot is the read-only surface: staff send order or item numbers and
// get the reconciled production history back.
type AnalystBot struct {
	client    telegram.Client
	search    *search.Service
	operators OperatorStore
	sessions  *SessionManager
	logger    *zap.Logger
}

// NewAnalystBot wires the analyst bot.
func NewAnalystBot(client telegram.Client, searchSvc *search.Service, operators OperatorStore, logger *zap.Logger) *AnalystBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalystBot{
		client:    client,
		search:    searchSvc,
		operators: operators,
		sessions:  NewSessionManager(),
		logger:    logger,
	}
}

// HandleUpdate routes one webhook update through the analyst conversation.
func (b *AnalystBot) HandleUpdate(ctx context.Context, update models.Update) error {
	userID, ok := senderID(update)
	if !ok {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	session := b.sessions.Get(chatID)

	switch {
	case text == "/start":
		return b.handleStart(ctx, chatID, userID, update.Message.From.DisplayName())
	case session.Step == StepAwaitingFullName:
		return b.handleRegistrationInput(ctx, chatID, userID, text)
	}

	_, registered, err := ensureRegistered(ctx, b.operators, userID)
	if err != nil {
		b.logger.Error("registration lookup failed", zap.Int64("user", userID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}
	if !registered {
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgRegistrationNeeded})
	}

	switch {
	case text == "/help":
		return b.handleHelp(ctx, chatID)
	case text == packagingButton:
		b.sessions.Update(chatID, Session{Step: StepAwaitingOrderNumber})
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "📦 *Packaged items lookup*\n\nEnter the order number, e.g. `152/1` or `123`.",
			Markdown: true,
		})
	case session.Step == StepAwaitingOrderNumber:
		return b.handlePackagingOrder(ctx, chatID, text)
	default:
		return b.handleQuery(ctx, chatID, text)
	}
}

func (b *AnalystBot) handleStart(ctx context.Context, chatID, userID int64, displayName string) error {
	b.sessions.Clear(chatID)

	op, registered, err := ensureRegistered(ctx, b.operators, userID)
	if err != nil {
		b.logger.Error("registration lookup failed", zap.Int64("user", userID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	if !registered {
		b.sessions.Update(chatID, Session{Step: StepAwaitingFullName})
		text := fmt.Sprintf("👋 Hello, %s!\n\nRegistration is required before querying.\n%s", displayName, msgAskFullName)
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: text, Markdown: true})
	}

	welcome := fmt.Sprintf("🤖 *Workshop Analyst*, %s!\n\n"+
		"🔍 I answer where orders and items have been seen.\n\n"+
		"• Send an *order number* (e.g. `152/1` or `123`)\n"+
		"• Send an *item number* (e.g. `152/1.28` or `123.45`)\n"+
		"• Use the *'%s'* button to list packaged items\n"+
		"• Use /help for details", op.FullName, packagingButton)

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     welcome,
		Markdown: true,
		Keyboard: [][]string{{packagingButton}},
	})
}

func (b *AnalystBot) handleRegistrationInput(ctx context.Context, chatID, userID int64, text string) error {
	if !validFullName(text) {
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgBadFullName, Markdown: true})
	}

	if err := b.operators.RegisterOperator(ctx, models.Operator{TelegramID: userID, FullName: text}); err != nil {
		b.logger.Error("user registration failed", zap.Int64("user", userID), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}

	b.sessions.Update(chatID, Session{})
	b.logger.Info("user registered", zap.Int64("user", userID))

	return reply(ctx, b.client, telegram.SendMessageRequest{
		ChatID:   chatID,
		Text:     fmt.Sprintf("✅ Registration complete, %s!\nSend an order or item number to search.", text),
		Keyboard: [][]string{{packagingButton}},
	})
}

func (b *AnalystBot) handleHelp(ctx context.Context, chatID int64) error {
	help := "📖 *Workshop Analyst help*\n\n" +
		"🔎 *Order search:* send the order number (e.g. `152/1`, `123`) to see " +
		"every item of the order across all stations.\n\n" +
		"🔎 *Item search:* send the full item number (e.g. `152/1.28`, `123.45`) " +
		"to see which stations it passed.\n\n" +
		"📦 *Packaged items:* press *'" + packagingButton + "'* and enter the order number.\n\n" +
		"Items at an outsourcing vendor appear under *Outsourcing*; returned " +
		"items are listed with packaging.\n\n" +
		"❌ When nothing is found the bot answers: _No production history found_."
	return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: help, Markdown: true})
}

func (b *AnalystBot) handlePackagingOrder(ctx context.Context, chatID int64, text string) error {
	orderNumber, err := models.ValidateOrderNumber(text)
	if err != nil {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "❗ Please enter a valid order number (digits, slashes and underscores).\nExample: `152/1` or `123`",
			Markdown: true,
		})
	}

	b.sessions.Clear(chatID)
	b.logger.Info("packaged items lookup", zap.String("order", orderNumber))

	report, err := b.search.PackagedReport(ctx, orderNumber)
	if err != nil {
		b.logger.Error("packaged items lookup failed", zap.String("order", orderNumber), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}
	if report == "" {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "📭 _Not started, or no packaged items yet_",
			Markdown: true,
		})
	}

	return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: report, Markdown: true})
}

func (b *AnalystBot) handleQuery(ctx context.Context, chatID int64, text string) error {
	query, err := models.ParseQuery(text)
	if err != nil {
		return reply(ctx, b.client, telegram.SendMessageRequest{
			ChatID:   chatID,
			Text:     "❗ Please enter a valid order number (e.g. `152/1`, `123`) or item number (e.g. `152/1.28`, `123.45`).",
			Markdown: true,
		})
	}

	b.logger.Info("history query", zap.String("kind", string(query.Kind)), zap.String("text", query.Text))

	var report string
	switch query.Kind {
	case models.ItemQuery:
		report, err = b.search.ItemReport(ctx, query.Text)
	default:
		report, err = b.search.OrderReport(ctx, query.Text)
	}
	if err != nil {
		b.logger.Error("history query failed", zap.String("text", query.Text), zap.Error(err))
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgGenericFailure})
	}
	if report == "" {
		return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: msgNoHistory, Markdown: true})
	}

	return reply(ctx, b.client, telegram.SendMessageRequest{ChatID: chatID, Text: report, Markdown: true})
}
