package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/chat"
	"github.com/educhat/backend/internal/docs"
	"github.com/educhat/backend/internal/metrics"
	"github.com/educhat/backend/internal/storage/models"
	"github.com/educhat/backend/internal/storage/sqlite"
	"github.com/educhat/backend/pkg/logger"
)

type ChatRequest struct {
	Question            string `json:"question"`
	UserID              string `json:"user_id"`
	Role                string `json:"role"`
	Name                string `json:"name"`
	UseGeneralKnowledge bool   `json:"use_general_knowledge"`
}

type ChatHandler struct {
	pipeline *chat.Pipeline
	store    *sqlite.Client
}

func NewChatHandler(pipeline *chat.Pipeline, store *sqlite.Client) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		store:    store,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		metrics.BadRequests.WithLabelValues("bad_body").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":       "Invalid request body",
			"source_type": string(chat.SourceError),
		})
	}

	if req.Question == "" {
		metrics.BadRequests.WithLabelValues("missing_question").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":       "Question is required",
			"source_type": string(chat.SourceError),
		})
	}
	if req.UserID == "" {
		metrics.BadRequests.WithLabelValues("missing_user").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":       "user_id is required",
			"source_type": string(chat.SourceError),
		})
	}

	answer, err := h.pipeline.Answer(c.Context(), chat.Query{
		Question:            req.Question,
		UserID:              req.UserID,
		Role:                docs.Role(req.Role),
		Name:                req.Name,
		UseGeneralKnowledge: req.UseGeneralKnowledge,
	})
	if err != nil {
		// Unknown role is the caller's defect; everything else already
		// degraded inside the pipeline.
		if errors.Is(err, docs.ErrInvalidRole) {
			metrics.BadRequests.WithLabelValues("invalid_role").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":       "Role must be one of teacher, student, parent",
				"source_type": string(chat.SourceError),
			})
		}
		logger.Error("Failed to answer chat", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":       "Failed to process question",
			"source_type": string(chat.SourceError),
		})
	}

	return c.JSON(fiber.Map{
		"id":          answer.ID,
		"answer":      answer.Text,
		"source_type": string(answer.SourceType),
		"latency_ms":  answer.LatencyMS,
	})
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.store.GetChatHistory(userID, limit)
	if err != nil {
		logger.Error("Failed to get chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get chat history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		history = append(history, fiber.Map{
			"id":          r.ID,
			"question":    r.Question,
			"answer":      r.Answer,
			"source_type": r.SourceType,
			"created_at":  r.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

func (h *ChatHandler) StoreFeedback(c *fiber.Ctx) error {
	var req struct {
		ChatID  string `json:"chat_id"`
		Helpful bool   `json:"helpful"`
		Comment string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "chat_id is required",
		})
	}

	err := h.store.StoreFeedback(&models.Feedback{
		ChatID:  req.ChatID,
		Helpful: req.Helpful,
		Comment: req.Comment,
	})
	if err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Feedback stored",
	})
}
