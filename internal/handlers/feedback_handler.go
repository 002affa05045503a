package handlers

import (
	"net/http"

	"roastmyapp_backend/internal/middleware"
	"roastmyapp_backend/internal/services"
	"roastmyapp_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	*BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(base *BaseHandler, feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     base,
		feedbackService: feedbackService,
	}
}

// RegisterRoutes регистрирует маршруты фидбеков
func (h *FeedbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	feedbacks := rg.Group("/feedbacks")
	feedbacks.Use(middleware.AuthMiddleware())
	{
		feedbacks.GET("/:id", h.Get)
		feedbacks.POST("/:id/submit", h.Submit)
		feedbacks.POST("/:id/complete", h.Complete)
		feedbacks.POST("/:id/rate", h.Rate)
	}

	requests := rg.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("/:id/feedbacks", h.ListForRequest)
	}

	me := rg.Group("/me")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/feedbacks", h.ListMine)
	}
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.feedbackService.Get(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitFeedbackRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.feedbackService.Submit(db, c.Param("id"), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted"})
}

func (h *FeedbackHandler) Complete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.feedbackService.Complete(db, c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback accepted"})
}

func (h *FeedbackHandler) Rate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RateFeedbackRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.feedbackService.Rate(db, c.Param("id"), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback rated"})
}

func (h *FeedbackHandler) ListForRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	responses, err := h.feedbackService.ListForRequest(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedbacks": responses})
}

func (h *FeedbackHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	responses, err := h.feedbackService.ListForRoaster(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedbacks": responses})
}
