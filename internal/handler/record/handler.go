package record

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/internal/handler"
	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/service/medical"
)

var errMissingData = errors.New("multipart request missing data field")

type Handler struct {
	svc *medical.Service
}

func NewHandler(svc *medical.Service) *Handler {
	return &Handler{svc: svc}
}

// Add creates a record for a patient. A plain JSON body creates a
// record without an image; a multipart body carries the record JSON in
// the "data" field and the image in the "image" file field.
func (h *Handler) Add(c *gin.Context) {
	patientID := c.Param("id")

	var req model.CreateMedicalRecordRequest
	var image *medical.ImageUpload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		data := c.PostForm("data")
		if data == "" {
			handler.FailBinding(c, errMissingData)
			return
		}
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			handler.FailBinding(c, err)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err == nil {
			file, openErr := fileHeader.Open()
			if openErr != nil {
				handler.FailBinding(c, openErr)
				return
			}
			defer file.Close()

			payload, readErr := io.ReadAll(file)
			if readErr != nil {
				handler.FailBinding(c, readErr)
				return
			}
			image = &medical.ImageUpload{Data: payload, Filename: fileHeader.Filename}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	created, err := h.svc.AddRecord(c.Request.Context(), patientID, &req, image)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusCreated, created)
}

func (h *Handler) Get(c *gin.Context) {
	rec, err := h.svc.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, rec)
}

func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	records, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"), c.Query("record_type"), limit)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, records)
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBinding(c, err)
		return
	}

	updated, err := h.svc.UpdateRecord(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ByModality(c *gin.Context) {
	records, err := h.svc.GetRecordsByModality(c.Request.Context(), c.Param("id"), c.Param("modality"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, http.StatusOK, records)
}

func (h *Handler) Timeline(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	records, err := h.svc.GetTimeline(c.Request.Context(), c.Param("id"), days)
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

// Image streams the stored image file for a record.
func (h *Handler) Image(c *gin.Context) {
	path, err := h.svc.GetImagePath(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.File(path)
}
