/**
* Name: 			user_handler.go
* Description: 		Admin login and service health
* Workflow: 		login issues the bearer token required by database operations
 */
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"MongoDbWithGo/internal/auth"

	"github.com/gin-gonic/gin"
)

// /login request body
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"password123"`
}

type LoginSuccessResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// Login godoc
// @Summary      Admin login
// @Description  Checks the admin credentials and issues a JWT for the database operations.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "Credentials"
// @Success      200 {object} handler.LoginSuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse "Invalid credentials"
// @Failure      500 {object} handler.ErrorResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var credentials LoginRequest

	rawData, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read request body"})
		return
	}
	if err := json.Unmarshal(rawData, &credentials); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if strings.TrimSpace(credentials.Username) == "" || credentials.Password == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	if err := auth.CheckPassword(h.adminUsername, h.adminPasswordHash, credentials.Username, credentials.Password); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	tokenString, err := h.issuer.GenerateToken(credentials.Username)
	if err != nil {
		log.Printf("[ERROR] Login: failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, LoginSuccessResponse{Token: tokenString})
}

// Health godoc
// @Summary      Health check
// @Description  Pings the document store.
// @Tags         Status
// @Produce      json
// @Success      200 {object} handler.HealthResponse
// @Failure      503 {object} handler.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		log.Printf("[ERROR] Health: store ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}
