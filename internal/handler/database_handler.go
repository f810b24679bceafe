package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// /get-collection response
type CollectionResponse struct {
	Name   string `json:"name" example:"Employees"`
	Exists bool   `json:"exists" example:"true"`
}

// CreateCollection godoc
// @Summary      Create a collection
// @Tags         Database
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Collection name"
// @Success      200 {object} handler.MessageResponse
// @Failure      400 {object} handler.ErrorResponse "Invalid collection name"
// @Failure      409 {object} handler.ErrorResponse "Collection already exists"
// @Failure      500 {object} handler.ErrorResponse
// @Router       /create-collection/{name} [post]
func (h *Handler) CreateCollection(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.CreateCollection(c.Request.Context(), name); err != nil {
		respondError(c, fmt.Sprintf("Failed to create collection '%s'", name), err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Collection '%s' created successfully.", name)})
}

// DropCollection godoc
// @Summary      Drop a collection
// @Description  Deletes the collection and every record in it. Dropping a missing collection succeeds.
// @Tags         Database
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Collection name"
// @Success      200 {object} handler.MessageResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /drop-collection/{name} [delete]
func (h *Handler) DropCollection(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.DropCollection(c.Request.Context(), name); err != nil {
		respondError(c, fmt.Sprintf("Failed to drop collection '%s'", name), err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Collection '%s' dropped successfully.", name)})
}

// ListCollections godoc
// @Summary      List collection names
// @Tags         Database
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  string
// @Failure      500 {object} handler.ErrorResponse
// @Router       /list-collections [get]
func (h *Handler) ListCollections(c *gin.Context) {
	names, err := h.store.ListCollections(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to retrieve collection names", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

// RenameCollection godoc
// @Summary      Rename a collection
// @Tags         Database
// @Produce      json
// @Security     BearerAuth
// @Param        oldName path string true "Current name"
// @Param        newName path string true "New name"
// @Success      200 {object} handler.MessageResponse
// @Failure      404 {object} handler.ErrorResponse "Source collection missing"
// @Failure      409 {object} handler.ErrorResponse "Target collection exists"
// @Router       /rename-collection/{oldName}/{newName} [post]
func (h *Handler) RenameCollection(c *gin.Context) {
	oldName, newName := c.Param("oldName"), c.Param("newName")
	if err := h.store.RenameCollection(c.Request.Context(), oldName, newName); err != nil {
		respondError(c, fmt.Sprintf("Failed to rename collection '%s' to '%s'", oldName, newName), err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Collection '%s' renamed to '%s' successfully.", oldName, newName),
	})
}

// GetCollection godoc
// @Summary      Check that a collection exists
// @Tags         Database
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Collection name"
// @Success      200 {object} handler.CollectionResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /get-collection/{name} [get]
func (h *Handler) GetCollection(c *gin.Context) {
	name := c.Param("name")
	exists, err := h.store.CollectionExists(c.Request.Context(), name)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to look up collection '%s'", name), err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("Collection '%s' not found", name)})
		return
	}
	c.JSON(http.StatusOK, CollectionResponse{Name: name, Exists: true})
}
