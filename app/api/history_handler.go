package api

import (
	"github.com/gofiber/fiber/v2"

	"ragchat/store"
)

type HistoryHandler struct {
	historyStore store.HistoryStorer
}

func NewHistoryHandler(historyStore store.HistoryStorer) *HistoryHandler {
	return &HistoryHandler{
		historyStore: historyStore,
	}
}

// HandleHistory returns stored exchanges in chronological order, optionally
// filtered by conversation_id.
func (h *HistoryHandler) HandleHistory(c *fiber.Ctx) error {
	conversationID := c.Query("conversation_id")

	exchanges, err := h.historyStore.History(c.Context(), conversationID)
	if err != nil {
		return err
	}
	return c.JSON(exchanges)
}
