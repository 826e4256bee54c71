package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/chat"
	"github.com/educhat/backend/internal/docs"
	"github.com/educhat/backend/pkg/logger"
)

type WebSocketHandler struct {
	pipeline *chat.Pipeline
}

func NewWebSocketHandler(pipeline *chat.Pipeline) *WebSocketHandler {
	return &WebSocketHandler{
		pipeline: pipeline,
	}
}

// HandleConnection serves chat over a websocket. Each message is one
// independent pipeline invocation answered with one complete frame; there
// is no token streaming and no memory between messages.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type                string `json:"type"`
			Question            string `json:"question"`
			UserID              string `json:"user_id"`
			Role                string `json:"role"`
			Name                string `json:"name"`
			UseGeneralKnowledge bool   `json:"use_general_knowledge"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Failed to read WebSocket message", zap.Error(err))
			}
			break
		}

		if msg.Type != "chat" {
			continue
		}

		if msg.Question == "" || msg.UserID == "" {
			h.sendError(c, "question and user_id are required")
			continue
		}

		answer, err := h.pipeline.Answer(context.Background(), chat.Query{
			Question:            msg.Question,
			UserID:              msg.UserID,
			Role:                docs.Role(msg.Role),
			Name:                msg.Name,
			UseGeneralKnowledge: msg.UseGeneralKnowledge,
		})
		if err != nil {
			if errors.Is(err, docs.ErrInvalidRole) {
				h.sendError(c, "Role must be one of teacher, student, parent")
				continue
			}
			logger.Error("Failed to answer WebSocket chat", zap.Error(err))
			h.sendError(c, "Failed to process question")
			continue
		}

		err = c.WriteJSON(map[string]interface{}{
			"type":        "answer",
			"id":          answer.ID,
			"answer":      answer.Text,
			"source_type": string(answer.SourceType),
			"latency_ms":  answer.LatencyMS,
		})
		if err != nil {
			logger.Error("Failed to write WebSocket answer", zap.Error(err))
			break
		}
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}
