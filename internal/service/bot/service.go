// Package bot hosts the two Telegram surfaces: the entry bot operators scan
// items with, and the analyst bot staff query histories with.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bsglab/workshoptrack/internal/domain/models"
	"github.com/bsglab/workshoptrack/internal/repository/sqlite"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
)

// Handler processes one inbound webhook update.
type Handler interface {
	HandleUpdate(ctx context.Context, update models.Update) error
}

// OperatorStore is the registration surface both bots share.
type OperatorStore interface {
	GetOperator(ctx context.Context, telegramID int64) (models.Operator, error)
	RegisterOperator(ctx context.Context, op models.Operator) error
}

const sendTimeout = 10 * time.Second

const (
	msgNoHistory          = "📭 _No production history found_"
	msgRegistrationNeeded = "❌ Registration is required.\nPlease start with /start"
	msgAskFullName        = "Please enter your full name, e.g. `Ivanov Ivan Ivanovich` or `Ivanov I.I.`"
	msgBadFullName        = "❌ That does not look like a full name.\n" + msgAskFullName
	msgGenericFailure     = "⚠️ Something went wrong while processing your request. Please try again later."
)

// reply sends a message back to the chat with a bounded timeout.
func reply(ctx context.Context, client telegram.Client, req telegram.SendMessageRequest) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := client.SendMessage(sendCtx, req)
	return err
}

// ensureRegistered loads the sender's operator record. The second return is
// false when the sender still has to register.
func ensureRegistered(ctx context.Context, store OperatorStore, telegramID int64) (models.Operator, bool, error) {
	op, err := store.GetOperator(ctx, telegramID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return models.Operator{}, false, nil
	}
	if err != nil {
		return models.Operator{}, false, err
	}
	return op, true, nil
}

// validFullName requires at least a surname and one more word, matching the
// registration dialog's format hint.
func validFullName(name string) bool {
	return len(strings.Fields(name)) >= 2
}

func senderID(update models.Update) (int64, bool) {
	if update.Message == nil || update.Message.From == nil {
		return 0, false
	}
	return update.Message.From.ID, true
}
