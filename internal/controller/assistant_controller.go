package controller

import (
	"io"
	"time"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/service"
	internalWS "legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/analysis"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Regenerate(ctx *fiber.Ctx) error
	ToggleNarration(ctx *fiber.Ctx) error
	AnalyzeDocument(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	SetVisibility(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Events(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	wsHub            *internalWS.Hub
	wsLogger         logger.ILogger
}

func NewAssistantController(assistantService service.IAssistantService, wsHub *internalWS.Hub, wsLogger logger.ILogger) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		wsHub:            wsHub,
		wsLogger:         wsLogger,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session", c.CreateSession)
	h.Get("session/:id/history", c.GetHistory)
	h.Post("session/:id/message", c.SendMessage)
	h.Post("session/:id/regenerate", c.Regenerate)
	h.Post("session/:id/narration", c.ToggleNarration)
	h.Post("session/:id/document", c.AnalyzeDocument)
	h.Post("session/:id/clear", c.ClearHistory)
	h.Put("session/:id/visibility", c.SetVisibility)
	h.Delete("session/:id", c.DeleteSession)

	// Websocket handshakes cannot carry an Authorization header from the
	// browser, so the events route does its own upgrade check instead of
	// the group middleware.
	r.Get("/assistant/v1/session/:id/events", c.Events)
}

func (c *assistantController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistantService.CreateSession(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *assistantController) GetHistory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistantService.GetHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session history", res))
}

func (c *assistantController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.SendMessage(ctx.Context(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message processed", res))
}

func (c *assistantController) Regenerate(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistantService.Regenerate(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Response regenerated", res))
}

func (c *assistantController) ToggleNarration(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.NarrationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.ToggleNarration(ctx.Context(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Narration toggled", res))
}

func (c *assistantController) AnalyzeDocument(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("document")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "document file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	file := &analysis.FileRef{
		Name:       fileHeader.Filename,
		Size:       fileHeader.Size,
		Content:    content,
		UploadedAt: time.Now(),
	}

	res, err := c.assistantService.AnalyzeDocument(ctx.Context(), userId, sessionId, file)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document analyzed", res))
}

func (c *assistantController) ClearHistory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.assistantService.ClearHistory(ctx.Context(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("History cleared", nil))
}

func (c *assistantController) SetVisibility(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.VisibilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.assistantService.SetVisibility(ctx.Context(), userId, sessionId, req.Visible); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Visibility updated", nil))
}

func (c *assistantController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.assistantService.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

// Events upgrades to a websocket and registers the connection on the hub so
// document and narration events reach this widget instance.
func (c *assistantController) Events(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.wsLogger.Info("AssistantController", "Starting event stream", map[string]interface{}{"session_id": sessionId.String()})
			internalWS.ServeWs(c.wsHub, conn, sessionId)
			c.wsLogger.Info("AssistantController", "Event stream ended", map[string]interface{}{"session_id": sessionId.String()})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}
