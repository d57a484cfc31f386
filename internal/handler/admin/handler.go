package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/internal/handler"
	"github.com/medscanhq/medscan-api/internal/middleware"
	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/service/admin"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

type Handler struct {
	svc *admin.Service
}

func NewHandler(svc *admin.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	token, user, err := h.svc.Authenticate(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) CreateAdminUser(c *gin.Context) {
	var req model.CreateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	user, err := h.svc.CreateAdminUser(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusCreated, user)
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.svc.GetDashboardStats(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, stats)
}

func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.svc.GetAnalytics(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, analytics)
}

func (h *Handler) SystemHealth(c *gin.Context) {
	health, err := h.svc.GetSystemHealth(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, health)
}

func (h *Handler) RecentActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	activities, err := h.svc.GetRecentActivities(c.Request.Context(), limit)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, activities)
}

func (h *Handler) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	logs, err := h.svc.GetRecentLogs(c.Request.Context(), limit)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, logs)
}

// FlagContent accepts a user report; it sits outside the admin auth
// gate so any authenticated surface can report content.
func (h *Handler) FlagContent(c *gin.Context) {
	var req model.CreateContentFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	flag, err := h.svc.FlagContent(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusCreated, flag)
}

func (h *Handler) PendingFlags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	flags, err := h.svc.GetPendingFlags(c.Request.Context(), limit)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, flags)
}

func (h *Handler) Moderate(c *gin.Context) {
	claims, ok := middleware.AdminClaims(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthorized("missing admin identity"))
		return
	}

	var req model.ModerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	flag, err := h.svc.ModerateContent(c.Request.Context(), c.Param("id"), claims, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, flag)
}
