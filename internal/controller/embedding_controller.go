package controller

import (
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEmbeddingController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Status(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type embeddingController struct {
	embeddingService service.IEmbeddingService
}

func NewEmbeddingController(embeddingService service.IEmbeddingService) IEmbeddingController {
	return &embeddingController{embeddingService: embeddingService}
}

func (c *embeddingController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/embedding/v1")
	h.Use(jwt)
	h.Get("status", c.Status)
	h.Delete("note/:id", c.Delete)
}

func (c *embeddingController) Status(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.embeddingService.GetStatus(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get embedding status", res))
}

func (c *embeddingController) Delete(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}

	if err := c.embeddingService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete embedding", nil))
}
