package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/middleware"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Register(c *gin.Context) {
	// 1. Parse JSON request
	body, ok := bindBody(c)
	if !ok {
		return
	}

	// 2. Validate against the user schema
	in, err := models.ParseInsertUser(body)
	if err != nil {
		respondError(c, err, "Invalid user data")
		return
	}

	// 3. Call service
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Invalid user data")
		return
	}

	c.JSON(http.StatusCreated, user)
}

type completeProfileRequest struct {
	BrokerNombre string `json:"brokerNombre"`
	BrokerCuenta string `json:"brokerCuenta"`
}

// CompleteProfile runs behind RequireSession.
func (h *UserHandler) CompleteProfile(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	var req completeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Broker information is required"})
		return
	}

	user, err := h.users.CompleteProfile(c.Request.Context(), current.ID, req.BrokerNombre, req.BrokerCuenta)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, user)
}
