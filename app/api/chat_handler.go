package api

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"ragchat/app/chat"
	"ragchat/types"
)

type ChatHandler struct {
	orchestrator *chat.Orchestrator
}

func NewChatHandler(orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	resp, err := h.orchestrator.Ask(c.Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HandleChatStream pushes the reply as server-sent events. The body stream
// writer runs after this handler returns, so params are captured by value
// and the fasthttp request context carries client-disconnect cancellation.
func (h *ChatHandler) HandleChatStream(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	reqCtx := c.Context()
	reqCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := h.orchestrator.AskStream(reqCtx, params, w); err != nil {
			// The transport is already committed to 200; nothing
			// more can be sent once writing fails.
			return
		}
	}))
	return nil
}
