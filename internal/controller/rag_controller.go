package controller

import (
	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/pkg/serverutils"
	"ai-paperwriter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Retrieve(ctx *fiber.Ctx) error
	BuildContext(ctx *fiber.Ctx) error
	BuildContexts(ctx *fiber.Ctx) error
	EditorContext(ctx *fiber.Ctx) error
	VerifyCitation(ctx *fiber.Ctx) error
	VerifyAllCitations(ctx *fiber.Ctx) error
}

type ragController struct {
	generationService service.IGenerationContextService
	editorService     service.IEditorContextService
}

func NewRagController(
	generationService service.IGenerationContextService,
	editorService service.IEditorContextService,
) IRagController {
	return &ragController{
		generationService: generationService,
		editorService:     editorService,
	}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Post("retrieve", c.Retrieve)
	h.Post("context", c.BuildContext)
	h.Post("contexts", c.BuildContexts)
	h.Post("editor-context", c.EditorContext)
	h.Post("verify-citation", c.VerifyCitation)
	h.Post("verify-all", c.VerifyAllCitations)
}

func (c *ragController) Retrieve(ctx *fiber.Ctx) error {
	var req dto.RetrieveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Retrieve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve chunks", res))
}

func (c *ragController) BuildContext(ctx *fiber.Ctx) error {
	var req dto.BuildContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.BuildContext(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build context", res))
}

func (c *ragController) BuildContexts(ctx *fiber.Ctx) error {
	var req dto.BuildContextsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.BuildContexts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build section contexts", res))
}

func (c *ragController) EditorContext(ctx *fiber.Ctx) error {
	var req dto.EditorContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editorService.RetrieveEditorContext(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve editor context", res))
}

func (c *ragController) VerifyCitation(ctx *fiber.Ctx) error {
	var req dto.VerifyCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editorService.VerifyCitation(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success verify citation", res))
}

func (c *ragController) VerifyAllCitations(ctx *fiber.Ctx) error {
	var req dto.VerifyAllCitationsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editorService.VerifyAllCitations(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success verify citations", res))
}
