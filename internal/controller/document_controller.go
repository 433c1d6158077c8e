package controller

import (
	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/serverutils"
	"github.com/seed-hypermedia/mintter-sub004/internal/service"
	internalWS "github.com/seed-hypermedia/mintter-sub004/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Live(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	hub             *internalWS.Hub
	logger          logger.ILogger
}

func NewDocumentController(documentService service.IDocumentService, hub *internalWS.Hub, log logger.ILogger) IDocumentController {
	return &documentController{
		documentService: documentService,
		hub:             hub,
		logger:          log,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	// Browsers cannot set headers on a websocket handshake, so the live route
	// authenticates from the query string and sits before the JWT group.
	r.Get("/document/v1/:id/live", c.Live)

	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func documentIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.ErrBadRequest("invalid document id", err)
	}
	return id, nil
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}
	id, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}
	id, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body", err)
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}
	id, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.documentService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid query", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Live(ctx *fiber.Ctx) error {
	userId, err := serverutils.ParseUserToken(ctx.Query("token"))
	if err != nil {
		c.logger.Warn("DocumentController", "Invalid token in live handshake", map[string]interface{}{"error": err})
		return err
	}
	id, err := documentIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.documentService.Authorize(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("DocumentController", "Live session started", map[string]interface{}{
			"document_id": id,
			"user_id":     userId,
		})
		internalWS.ServeWs(c.hub, conn, id, userId)
		c.logger.Info("DocumentController", "Live session ended", map[string]interface{}{"document_id": id})
	})(ctx)
}
