package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rd-assistant/internal/dto"
	"rd-assistant/internal/pkg/serverutils"
	"rd-assistant/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Visualization(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
	ListSaved(ctx *fiber.Ctx) error
	LoadSaved(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get("", c.ListSaved)
	h.Post("", c.Create)
	h.Post("/load", c.LoadSaved)
	h.Post("/:id/messages", c.SendMessage)
	h.Get("/:id/status", c.Status)
	h.Get("/:id/visualization", c.Visualization)
	h.Get("/:id/document", c.Document)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.Context(), ctx.Params("id"), req.Message)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}

func (c *sessionController) Status(ctx *fiber.Ctx) error {
	res, err := c.service.Status(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session status", res))
}

func (c *sessionController) Visualization(ctx *fiber.Ctx) error {
	diagramType := ctx.Query("diagram_type", "mindmap")

	res, err := c.service.Visualization(ctx.Context(), ctx.Params("id"), diagramType)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate visualization", res))
}

func (c *sessionController) Document(ctx *fiber.Ctx) error {
	res, err := c.service.Document(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate document", res))
}

func (c *sessionController) ListSaved(ctx *fiber.Ctx) error {
	res, err := c.service.ListSaved(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) LoadSaved(ctx *fiber.Ctx) error {
	var req dto.LoadSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.LoadSaved(ctx.Context(), req.FilePath)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success load session", res))
}

func mapServiceError(err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return fiber.ErrNotFound
	}
	return err
}
