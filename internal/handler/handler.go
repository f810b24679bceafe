// Package handler provides the gin HTTP handlers for the employee document service.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"MongoDbWithGo/internal/auth"
	"MongoDbWithGo/internal/middleware"
	"MongoDbWithGo/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler holds the shared store handle and the settings every route needs.
type Handler struct {
	store      storage.Store
	collection string

	issuer            *auth.Issuer
	adminUsername     string
	adminPasswordHash string
}

type Options struct {
	// Collection holds the employee records.
	Collection string
	// Issuer enables bearer-token auth on database operations when non-nil.
	Issuer            *auth.Issuer
	AdminUsername     string
	AdminPasswordHash string
}

func New(s storage.Store, opts Options) *Handler {
	return &Handler{
		store:             s,
		collection:        opts.Collection,
		issuer:            opts.Issuer,
		adminUsername:     opts.AdminUsername,
		adminPasswordHash: opts.AdminPasswordHash,
	}
}

type ErrorResponse struct {
	Error string `json:"error" example:"Invalid argument"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Collection 'Employees' created successfully."`
}

// respondError maps a store error onto the error taxonomy. Store text is only
// logged, never returned.
func respondError(c *gin.Context, action string, err error) {
	status, kind := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status, kind = http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrConflict):
		status, kind = http.StatusConflict, "already exists"
	case errors.Is(err, storage.ErrInvalidArgument):
		status, kind = http.StatusBadRequest, "invalid argument"
	case errors.Is(err, storage.ErrUnavailable):
		status, kind = http.StatusServiceUnavailable, "document store unavailable"
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s (request %s): %v", action, c.GetString(middleware.RequestIDKey), err)
	}
	c.JSON(status, ErrorResponse{Error: action + ": " + kind})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		badRequest(c, "Invalid id: expected a 24 character hex ObjectId")
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindOptionalJSON decodes the request body into v. It reports false without
// touching v when the body is empty, so callers can fall back to a sample value.
func bindOptionalJSON(c *gin.Context, v any) (bool, error) {
	rawData, err := c.GetRawData()
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(rawData)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rawData, v); err != nil {
		return false, err
	}
	return true, nil
}
