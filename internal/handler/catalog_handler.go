package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/service"
)

// CatalogHandler serves courses and testimonials.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) ListFreeCourses(c *gin.Context) {
	courses, err := h.catalog.ListFreeCourses(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) ListPremiumCourses(c *gin.Context) {
	courses, err := h.catalog.ListPremiumCourses(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	in, err := models.ParseInsertCourse(body)
	if err != nil {
		respondError(c, err, "Invalid course data")
		return
	}

	course, err := h.catalog.CreateCourse(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Invalid course data")
		return
	}
	c.JSON(http.StatusCreated, course)
}

// ListTestimonials returns only visible testimonials.
func (h *CatalogHandler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.catalog.ListVisibleTestimonials(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

func (h *CatalogHandler) CreateTestimonial(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	in, err := models.ParseInsertTestimonial(body)
	if err != nil {
		respondError(c, err, "Invalid testimonial data")
		return
	}

	testimonial, err := h.catalog.CreateTestimonial(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Invalid testimonial data")
		return
	}
	c.JSON(http.StatusCreated, testimonial)
}
