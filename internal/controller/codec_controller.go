package controller

import (
	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/serverutils"
	"github.com/seed-hypermedia/mintter-sub004/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICodecController interface {
	RegisterRoutes(r fiber.Router)
	Flatten(ctx *fiber.Ctx) error
	Expand(ctx *fiber.Ctx) error
	Markdown(ctx *fiber.Ctx) error
}

type codecController struct {
	codecService service.ICodecService
}

func NewCodecController(codecService service.ICodecService) ICodecController {
	return &codecController{
		codecService: codecService,
	}
}

func (c *codecController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/codec/v1")
	h.Post("flatten", c.Flatten)
	h.Post("expand", c.Expand)
	h.Post("markdown", c.Markdown)
}

func (c *codecController) Flatten(ctx *fiber.Ctx) error {
	var req dto.FlattenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codecService.Flatten(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success flatten content", res))
}

func (c *codecController) Expand(ctx *fiber.Ctx) error {
	var req dto.ExpandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codecService.Expand(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success expand blocks", res))
}

func (c *codecController) Markdown(ctx *fiber.Ctx) error {
	var req dto.MarkdownRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codecService.Markdown(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success render markdown", res))
}
