/**
* Name: 			collection_handler.go
* Description: 		CRUD and counts on the employee collection
* Workflow: 		create, create-many, all, get-by-id, replace, update-field, delete, count
 */
package handler

import (
	"net/http"
	"strconv"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"github.com/gin-gonic/gin"
)

// /update-field request body
type UpdateFieldRequest struct {
	Name *string `json:"name" example:"Partially Updated Name"`
}

// Create godoc
// @Summary      Insert one employee
// @Description  Inserts the employee in the body. An empty body inserts the sample record {"name":"John Doe","age":30}.
// @Description  The id is generated when absent.
// @Tags         Collection
// @Accept       json
// @Produce      json
// @Param        request body models.Employee false "Employee to insert"
// @Success      200 {object} models.Employee
// @Failure      400 {object} handler.ErrorResponse "Malformed body"
// @Failure      409 {object} handler.ErrorResponse "Duplicate id"
// @Failure      503 {object} handler.ErrorResponse
// @Router       /create [post]
func (h *Handler) Create(c *gin.Context) {
	var employee models.Employee
	present, err := bindOptionalJSON(c, &employee)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if !present {
		employee = models.SampleEmployee()
	}

	employee.Normalize()

	if err := h.store.InsertOne(c.Request.Context(), h.collection, &employee); err != nil {
		respondError(c, "Failed to insert document", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// CreateMany godoc
// @Summary      Insert a batch of employees
// @Description  Inserts the employees in the body in one batch call. An empty body inserts four sample records.
// @Tags         Collection
// @Accept       json
// @Produce      json
// @Param        request body []models.Employee false "Employees to insert"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "Duplicate id"
// @Router       /create-many [post]
func (h *Handler) CreateMany(c *gin.Context) {
	employees := models.SampleEmployees()
	var body []models.Employee
	present, err := bindOptionalJSON(c, &body)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if present {
		if len(body) == 0 {
			badRequest(c, "At least one employee is required")
			return
		}
		employees = body
	}

	for i := range employees {
		employees[i].Normalize()
	}

	if err := h.store.InsertMany(c.Request.Context(), h.collection, employees); err != nil {
		respondError(c, "Failed to insert documents", err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// GetAll godoc
// @Summary      List every employee
// @Tags         Collection
// @Produce      json
// @Success      200 {array}  models.Employee
// @Failure      503 {object} handler.ErrorResponse
// @Router       /all [get]
func (h *Handler) GetAll(c *gin.Context) {
	h.find(c, filter.Empty())
}

// GetByID godoc
// @Summary      Get an employee by id
// @Description  Returns the employee, or null when no record has the id.
// @Tags         Collection
// @Produce      json
// @Param        id path string true "Employee id (ObjectId hex)"
// @Success      200 {object} models.Employee
// @Failure      400 {object} handler.ErrorResponse "Malformed id"
// @Router       /get-by-id/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	employee, err := h.store.FindByID(c.Request.Context(), h.collection, id)
	if err != nil {
		respondError(c, "Failed to fetch document", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Replace godoc
// @Summary      Replace an employee
// @Description  Replaces the whole record. An empty body uses {"name":"Updated Name","age":40}. The path id wins over any id in the body.
// @Tags         Collection
// @Accept       json
// @Produce      json
// @Param        id      path string          true  "Employee id (ObjectId hex)"
// @Param        request body models.Employee false "Replacement record"
// @Success      200 {object} models.UpdateResult
// @Failure      400 {object} handler.ErrorResponse
// @Router       /replace/{id} [put]
func (h *Handler) Replace(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var employee models.Employee
	present, err := bindOptionalJSON(c, &employee)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if !present {
		employee = models.SampleReplacement()
	}

	employee.Normalize()

	result, err := h.store.ReplaceOne(c.Request.Context(), h.collection, id, employee)
	if err != nil {
		respondError(c, "Failed to replace document", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateField godoc
// @Summary      Set the name of an employee
// @Description  Sets only the Name field. An empty body sets "Partially Updated Name".
// @Tags         Collection
// @Accept       json
// @Produce      json
// @Param        id      path string                     true  "Employee id (ObjectId hex)"
// @Param        request body handler.UpdateFieldRequest false "New name"
// @Success      200 {object} models.UpdateResult
// @Failure      400 {object} handler.ErrorResponse
// @Router       /update-field/{id} [patch]
func (h *Handler) UpdateField(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	name := models.SampleUpdatedName
	var req UpdateFieldRequest
	present, err := bindOptionalJSON(c, &req)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if present {
		if req.Name == nil {
			badRequest(c, "name is required")
			return
		}
		name = *req.Name
	}

	result, err := h.store.SetField(c.Request.Context(), h.collection, id, models.FieldName, name)
	if err != nil {
		respondError(c, "Failed to update document", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete godoc
// @Summary      Delete an employee
// @Description  Removes at most one record. A missing id reports deletedCount 0.
// @Tags         Collection
// @Produce      json
// @Param        id path string true "Employee id (ObjectId hex)"
// @Success      200 {object} models.DeleteResult
// @Failure      400 {object} handler.ErrorResponse
// @Router       /delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.store.DeleteOne(c.Request.Context(), h.collection, id)
	if err != nil {
		respondError(c, "Failed to delete document", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EstimatedDocumentCount godoc
// @Summary      Estimated record count
// @Description  Fast count from collection metadata. May lag behind recent writes.
// @Tags         Collection
// @Produce      json
// @Success      200 {integer} int64
// @Router       /count/estimated [get]
func (h *Handler) EstimatedDocumentCount(c *gin.Context) {
	n, err := h.store.EstimatedDocumentCount(c.Request.Context(), h.collection)
	if err != nil {
		respondError(c, "Failed to count documents", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// CountDocuments godoc
// @Summary      Exact record count
// @Description  Counts every record. With minAge, counts only records whose age is greater than minAge.
// @Tags         Collection
// @Produce      json
// @Param        minAge query int false "Count only records older than this"
// @Success      200 {integer} int64
// @Failure      400 {object} handler.ErrorResponse
// @Router       /count [get]
func (h *Handler) CountDocuments(c *gin.Context) {
	f := filter.Empty()
	if v, ok := c.GetQuery("minAge"); ok {
		minAge, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "minAge must be an integer")
			return
		}
		f = filter.Gt(models.FieldAge, minAge)
	}

	n, err := h.store.CountDocuments(c.Request.Context(), h.collection, f)
	if err != nil {
		respondError(c, "Failed to count documents", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) find(c *gin.Context, f filter.Filter) {
	employees, err := h.store.Find(c.Request.Context(), h.collection, f)
	if err != nil {
		respondError(c, "Failed to query documents", err)
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	c.JSON(http.StatusOK, employees)
}
