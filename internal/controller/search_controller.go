package controller

import (
	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Hybrid(ctx *fiber.Ctx) error
	Semantic(ctx *fiber.Ctx) error
	FullText(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{searchService: searchService}
}

func (c *searchController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/search/v1")
	h.Use(jwt)
	h.Post("hybrid", c.Hybrid)
	h.Post("semantic", c.Semantic)
	h.Post("full-text", c.FullText)
}

func (c *searchController) Hybrid(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.HybridSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.HybridSearch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success hybrid search", res))
}

func (c *searchController) Semantic(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SemanticSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.SemanticSearch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search", res))
}

func (c *searchController) FullText(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.FullTextSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.FullTextSearch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success full text search", res))
}
