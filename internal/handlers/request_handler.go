package handlers

import (
	"net/http"

	"roastmyapp_backend/internal/middleware"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/services"
	"roastmyapp_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	*BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(base *BaseHandler, requestService services.RequestService) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

// RegisterRoutes регистрирует маршруты roast-запросов
func (h *RequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/requests")
	{
		public.GET("", h.Search)
	}

	// Расчет стоимости до создания запроса - доступен без аутентификации.
	rg.GET("/pricing/quote", h.Quote)

	authed := rg.Group("/requests")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/:id", h.Get)
		authed.POST("", middleware.RequireRoles(models.UserRoleCreator), h.Create)
		authed.PATCH("/:id", middleware.RequireRoles(models.UserRoleCreator), h.Update)
		authed.POST("/:id/cancel", middleware.RequireRoles(models.UserRoleCreator), h.Cancel)
	}

	me := rg.Group("/me")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/requests", h.ListMine)
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.requestService.Create(db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.requestService.Get(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *RequestHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.requestService.Update(db, c.Param("id"), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request updated"})
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.requestService.Cancel(db, c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	responses, err := h.requestService.ListByCreator(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": responses})
}

func (h *RequestHandler) Search(c *gin.Context) {
	var req dto.SearchRequestsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	req.Page, req.PageSize = ParsePagination(c)

	db := h.GetDB(c)

	responses, total, err := h.requestService.Search(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests":  responses,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

func (h *RequestHandler) Quote(c *gin.Context) {
	var req dto.PricingQuoteRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	breakdown, err := h.requestService.Quote(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
