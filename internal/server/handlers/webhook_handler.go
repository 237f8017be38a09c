package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
	"github.com/bsglab/workshoptrack/internal/service/bot"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
)

// secretTokenHeader carries the value set at setWebhook time.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler adapts Telegram webhook HTTP traffic onto the two bots.
type WebhookHandler struct {
	entryBot      bot.Handler
	analystBot    bot.Handler
	notifier      telegram.Client
	webhookSecret string
	logger        *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(entryBot, analystBot bot.Handler, notifier telegram.Client, webhookSecret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		entryBot:      entryBot,
		analystBot:    analystBot,
		notifier:      notifier,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// EntryWebhook ingests updates for the shop-floor entry bot.
func (h *WebhookHandler) EntryWebhook(c *gin.Context) {
	h.receive(c, h.entryBot, "entry")
}

// AnalystWebhook ingests updates for the analyst bot.
func (h *WebhookHandler) AnalystWebhook(c *gin.Context) {
	h.receive(c, h.analystBot, "analyst")
}

func (h *WebhookHandler) receive(c *gin.Context, handler bot.Handler, name string) {
	if h.webhookSecret != "" && c.GetHeader(secretTokenHeader) != h.webhookSecret {
		h.logger.Warn("webhook secret mismatch", zap.String("bot", name))
		c.Status(http.StatusForbidden)
		return
	}

	var update models.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("invalid webhook payload", zap.String("bot", name), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := handler.HandleUpdate(c.Request.Context(), update); err != nil {
		h.logger.Error("failed processing update",
			zap.String("bot", name),
			zap.Int64("update_id", update.UpdateID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process update"})
		return
	}

	c.Status(http.StatusOK)
}

// SendMessage allows pushing outbound notifications manually through the
// analyst bot.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := h.notifier.SendMessage(c.Request.Context(), telegram.SendMessageRequest{
		ChatID: req.ChatID,
		Text:   req.Text,
	}); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
