package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/server"
	"github.com/kbukum/chatgate/sse"
)

// Handler serves the gateway's HTTP API.
type Handler struct {
	dispatcher *Dispatcher
	hub        *sse.Hub
	keepAlive  time.Duration
	log        *logger.Logger
}

// NewHandler creates a handler. A nil hub leaves /api/activity
// unregistered.
func NewHandler(d *Dispatcher, hub *sse.Hub, keepAlive time.Duration, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{dispatcher: d, hub: hub, keepAlive: keepAlive, log: log.WithComponent("gateway.http")}
}

// Register mounts the routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/chat", h.chat)
	api.POST("/chat/events", h.chatEvents)
	api.GET("/models", h.models)
	if h.hub != nil {
		api.GET("/activity", h.activity)
	}
}

// start binds the body and dispatches it, answering with JSON on failure.
func (h *Handler) start(c *gin.Context) (*Stream, bool) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body must be a JSON chat request.").WithCause(err))
		return nil, false
	}
	stream, err := h.dispatcher.Dispatch(c.Request.Context(), &req)
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return stream, true
}

func (h *Handler) chat(c *gin.Context) {
	stream, ok := h.start(c)
	if !ok {
		return
	}

	rc := http.NewResponseController(c.Writer)
	_ = rc.SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for chunk := range stream.C {
		if chunk.Err != nil {
			// Headers are gone; ending the body is all that is left.
			h.log.WithContext(c.Request.Context()).Warn("stream truncated", logger.Fields(
				logger.FieldModel, stream.Model,
				logger.FieldError, chunk.Err.Error(),
			))
			return
		}
		if _, err := c.Writer.WriteString(chunk.Content); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

func (h *Handler) chatEvents(c *gin.Context) {
	stream, ok := h.start(c)
	if !ok {
		return
	}

	w, err := sse.NewWriter(c.Writer)
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	c.Status(http.StatusOK)

	for chunk := range stream.C {
		if chunk.Err != nil {
			msg := chunk.Err.Error()
			if appErr, ok := errors.AsAppError(chunk.Err); ok {
				msg = appErr.Message
			}
			_ = w.WriteJSON(sse.ErrorFrame(msg))
			return
		}
		if err := w.WriteJSON(sse.TextFrame(chunk.Content)); err != nil {
			return
		}
	}
	if c.Request.Context().Err() == nil {
		_ = w.WriteJSON(sse.DoneFrame())
	}
}

// ProviderGroup lists the models of one provider.
type ProviderGroup struct {
	ID     llm.ProviderKind `json:"id"`
	Name   string           `json:"name"`
	Icon   string           `json:"icon"`
	Models []string         `json:"models"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models    []llm.ModelConfig `json:"models"`
	Providers []ProviderGroup   `json:"providers"`
}

// ListModels builds the model table grouped by provider.
func ListModels() ModelsResponse {
	resp := ModelsResponse{Models: llm.AllModels()}
	for _, kind := range llm.Providers {
		g := ProviderGroup{ID: kind, Name: kind.DisplayName(), Icon: llm.ProviderIcon(kind)}
		for _, m := range llm.ModelsByProvider(kind) {
			g.Models = append(g.Models, m.ID)
		}
		resp.Providers = append(resp.Providers, g)
	}
	return resp
}

func (h *Handler) models(c *gin.Context) {
	server.RespondOK(c, ListModels())
}

func (h *Handler) activity(c *gin.Context) {
	id := logger.RequestIDFromContext(c.Request.Context())
	if id == "" {
		id = uuid.NewString()
	}
	client := sse.NewClient(id, c.Query("model"))
	sse.ServeSubscription(h.hub, c.Writer, c.Request, client, h.keepAlive)
}
