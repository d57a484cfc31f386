package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/internal/handler"
	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/service/appointment"
)

type Handler struct {
	svc *appointment.Service
}

func NewHandler(svc *appointment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	booked, err := h.svc.Book(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusCreated, booked)
}

func (h *Handler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, a)
}

func (h *Handler) List(c *gin.Context) {
	appointments, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, appointments)
}

func (h *Handler) Cancel(c *gin.Context) {
	cancelled, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, cancelled)
}
