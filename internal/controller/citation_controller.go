package controller

import (
	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/pkg/serverutils"
	"ai-paperwriter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICitationController interface {
	RegisterRoutes(r fiber.Router)
	Resolve(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	RenderInline(ctx *fiber.Ctx) error
	RenderBibliography(ctx *fiber.Ctx) error
	ScanContent(ctx *fiber.Ctx) error
}

type citationController struct {
	citationService service.ICitationService
}

func NewCitationController(citationService service.ICitationService) ICitationController {
	return &citationController{
		citationService: citationService,
	}
}

func (c *citationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/citation/v1")
	h.Post("resolve", c.Resolve)
	h.Post("", c.Add)
	h.Post("render-inline", c.RenderInline)
	h.Post("bibliography", c.RenderBibliography)
	h.Post("scan", c.ScanContent)
}

func (c *citationController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveSourceRefRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.citationService.ResolveSourceRef(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve source reference", res))
}

func (c *citationController) Add(ctx *fiber.Ctx) error {
	var req dto.AddCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.citationService.Add(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add citation", res))
}

func (c *citationController) RenderInline(ctx *fiber.Ctx) error {
	var req dto.RenderInlineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.citationService.RenderInline(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success render inline citation", res))
}

func (c *citationController) RenderBibliography(ctx *fiber.Ctx) error {
	var req dto.RenderBibliographyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.citationService.RenderBibliography(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success render bibliography", res))
}

func (c *citationController) ScanContent(ctx *fiber.Ctx) error {
	var req dto.ScanContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.citationService.ExtractAndCreateFromContent(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success scan content for citations", res))
}
