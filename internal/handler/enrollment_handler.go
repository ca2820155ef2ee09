package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/service"
)

type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

func (h *EnrollmentHandler) ListForUser(c *gin.Context) {
	enrollments, err := h.enrollments.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) Create(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	in, err := models.ParseInsertEnrollment(body)
	if err != nil {
		respondError(c, err, "Invalid enrollment data")
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Invalid enrollment data")
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}
