package controller

import (
	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	FindSimilar(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService  service.INoteService
	topicService service.ITopicService
}

func NewNoteController(noteService service.INoteService, topicService service.ITopicService) INoteController {
	return &noteController{
		noteService:  noteService,
		topicService: topicService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/note/v1")
	h.Use(jwt)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/similar", c.FindSimilar)
	h.Post(":id/classify", c.Classify)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}

	res, err := c.noteService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}

	if err := c.noteService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}

func (c *noteController) FindSimilar(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}
	limit := ctx.QueryInt("limit", 0)

	res, err := c.topicService.FindSimilarNotes(ctx.Context(), userId, id, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success find similar notes", res))
}

func (c *noteController) Classify(ctx *fiber.Ctx) error {
	userId, err := authUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid note id")
	}

	topics, err := c.topicService.ClassifyNote(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	res := dto.ClassifyNoteResponse{NoteId: id, Topics: topics}
	return ctx.JSON(serverutils.SuccessResponse("Success classify note", res))
}

func authUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, err := uuid.Parse(serverutils.UserIdFromCtx(ctx))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user identity")
	}
	return userId, nil
}
