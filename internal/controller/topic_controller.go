package controller

import (
	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITopicController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Recompute(ctx *fiber.Ctx) error
}

type topicController struct {
	topicService service.ITopicService
}

func NewTopicController(topicService service.ITopicService) ITopicController {
	return &topicController{topicService: topicService}
}

func (c *topicController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/topic/v1")
	h.Use(jwt)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post("recompute", c.Recompute)
}

func (c *topicController) Create(ctx *fiber.Ctx) error {
	if _, err := authUserId(ctx); err != nil {
		return err
	}

	var req dto.CreateTopicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.topicService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create topic", res))
}

func (c *topicController) List(ctx *fiber.Ctx) error {
	if _, err := authUserId(ctx); err != nil {
		return err
	}

	res, err := c.topicService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list topics", res))
}

func (c *topicController) Recompute(ctx *fiber.Ctx) error {
	if _, err := authUserId(ctx); err != nil {
		return err
	}

	if err := c.topicService.RecomputeCentroids(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success recompute centroids", nil))
}
