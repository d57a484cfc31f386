package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/internal/handler"
	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/service/patient"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusCreated, created)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, p)
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, results)
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.svc.GetStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, stats)
}

func (h *Handler) ConditionHistory(c *gin.Context) {
	records, err := h.svc.GetConditionHistory(c.Request.Context(), c.Param("id"), c.Param("condition"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, records)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, summary)
}
