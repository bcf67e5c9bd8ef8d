package controller

import (
	"strconv"

	"docuchat-be/internal/dto"
	"docuchat-be/internal/pkg/apperror"
	"docuchat-be/internal/pkg/serverutils"
	"docuchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetActiveSession(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetSessionMessages(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	ArchiveSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("session", c.GetActiveSession)
	h.Post("session/new", c.CreateSession)
	h.Get("sessions", c.ListSessions)
	h.Post("message", c.SendMessage)
	h.Get("session/:id/messages", c.GetSessionMessages)
	h.Patch("session/:id", c.RenameSession)
	h.Post("session/:id/archive", c.ArchiveSession)
	h.Delete("session/:id", c.DeleteSession)
}

func principal(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID) {
	userIdStr := ctx.Locals("user_id").(string)
	orgIdStr := ctx.Locals("organization_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	orgId, _ := uuid.Parse(orgIdStr)
	return userId, orgId
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid session id")
	}
	return id, nil
}

func (c *chatController) GetActiveSession(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	res, err := c.chatService.GetActiveSession(ctx.Context(), userId, orgId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active session", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	res, err := c.chatService.CreateSession(ctx.Context(), userId, orgId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	includeArchived := ctx.QueryBool("include_archived", false)
	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))

	res, err := c.chatService.ListSessions(ctx.Context(), userId, orgId, includeArchived, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	var sessionId *uuid.UUID
	if raw := ctx.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperror.Validation("invalid session id")
		}
		sessionId = &id
	}

	res, err := c.chatService.SendMessage(ctx.Context(), userId, orgId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) GetSessionMessages(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))
	cursor := ctx.Query("cursor", "")

	res, err := c.chatService.GetSessionMessages(ctx.Context(), userId, orgId, id, limit, cursor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session messages", res))
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.RenameSession(ctx.Context(), userId, orgId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename session", res))
}

func (c *chatController) ArchiveSession(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ArchiveSession(ctx.Context(), userId, orgId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success archive session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, orgId := principal(ctx)

	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.Context(), userId, orgId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
