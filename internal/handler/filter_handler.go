package handler

import (
	"strconv"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"github.com/gin-gonic/gin"
)

// defaultNamePattern is used by /regex when no pattern is given.
const defaultNamePattern = "^J"

func intQuery(c *gin.Context, key string) (int, bool) {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		badRequest(c, key+" must be an integer")
		return 0, false
	}
	return v, true
}

func requiredQuery(c *gin.Context, key string) (string, bool) {
	v := c.Query(key)
	if v == "" {
		badRequest(c, key+" is required")
		return "", false
	}
	return v, true
}

// Equal godoc
// @Summary      Name equals
// @Tags         Filters
// @Produce      json
// @Param        name query string false "Name"
// @Success      200 {array} models.Employee
// @Router       /api/mongofilters/eq [get]
func (h *Handler) Equal(c *gin.Context) {
	h.find(c, filter.Eq(models.FieldName, c.Query("name")))
}

// NotEqual godoc
// @Summary      Name not equal
// @Tags         Filters
// @Produce      json
// @Param        name query string false "Name"
// @Success      200 {array} models.Employee
// @Router       /api/mongofilters/ne [get]
func (h *Handler) NotEqual(c *gin.Context) {
	h.find(c, filter.Ne(models.FieldName, c.Query("name")))
}

func (h *Handler) ageFilter(build func(string, any) filter.Filter) gin.HandlerFunc {
	return func(c *gin.Context) {
		age, ok := intQuery(c, "age")
		if !ok {
			return
		}
		h.find(c, build(models.FieldAge, age))
	}
}

// GreaterThan godoc
// @Summary      Age greater than
// @Tags         Filters
// @Produce      json
// @Param        age query int true "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/gt [get]
func (h *Handler) GreaterThan(c *gin.Context) { h.ageFilter(filter.Gt)(c) }

// GreaterThanOrEqual godoc
// @Summary      Age greater than or equal
// @Tags         Filters
// @Produce      json
// @Param        age query int true "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/gte [get]
func (h *Handler) GreaterThanOrEqual(c *gin.Context) { h.ageFilter(filter.Gte)(c) }

// LessThan godoc
// @Summary      Age less than
// @Tags         Filters
// @Produce      json
// @Param        age query int true "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/lt [get]
func (h *Handler) LessThan(c *gin.Context) { h.ageFilter(filter.Lt)(c) }

// LessThanOrEqual godoc
// @Summary      Age less than or equal
// @Tags         Filters
// @Produce      json
// @Param        age query int true "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/lte [get]
func (h *Handler) LessThanOrEqual(c *gin.Context) { h.ageFilter(filter.Lte)(c) }

// In godoc
// @Summary      Name in set
// @Tags         Filters
// @Produce      json
// @Param        names query []string false "Names" collectionFormat(multi)
// @Success      200 {array} models.Employee
// @Router       /api/mongofilters/in [get]
func (h *Handler) In(c *gin.Context) {
	h.find(c, filter.In(models.FieldName, c.QueryArray("names")))
}

// NotIn godoc
// @Summary      Name not in set
// @Tags         Filters
// @Produce      json
// @Param        names query []string false "Names" collectionFormat(multi)
// @Success      200 {array} models.Employee
// @Router       /api/mongofilters/nin [get]
func (h *Handler) NotIn(c *gin.Context) {
	h.find(c, filter.Nin(models.FieldName, c.QueryArray("names")))
}

func (h *Handler) nameAndAge(combine func(...filter.Filter) filter.Filter) gin.HandlerFunc {
	return func(c *gin.Context) {
		age, ok := intQuery(c, "age")
		if !ok {
			return
		}
		h.find(c, combine(
			filter.Eq(models.FieldName, c.Query("name")),
			filter.Eq(models.FieldAge, age),
		))
	}
}

// And godoc
// @Summary      Name equals and age equals
// @Tags         Filters
// @Produce      json
// @Param        name query string false "Name"
// @Param        age  query int    true  "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/and [get]
func (h *Handler) And(c *gin.Context) { h.nameAndAge(filter.And)(c) }

// Or godoc
// @Summary      Name equals or age equals
// @Tags         Filters
// @Produce      json
// @Param        name query string false "Name"
// @Param        age  query int    true  "Age"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/or [get]
func (h *Handler) Or(c *gin.Context) { h.nameAndAge(filter.Or)(c) }

// Exists godoc
// @Summary      Field present
// @Description  fieldName accepts the JSON name (designation) or the stored name (Designation).
// @Tags         Filters
// @Produce      json
// @Param        fieldName query string true "Field name"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/exists [get]
func (h *Handler) Exists(c *gin.Context) {
	field, ok := requiredQuery(c, "fieldName")
	if !ok {
		return
	}
	h.find(c, filter.Exists(models.ResolveField(field)))
}

// Type godoc
// @Summary      Field has BSON type
// @Description  bsonType accepts MongoDB aliases (string, int, double, array, date, objectId, number), .NET names (String, Int32, DateTime, JavaScriptWithScope) or the numeric codes 1-19, -1 and 127.
// @Tags         Filters
// @Produce      json
// @Param        fieldName query string true "Field name"
// @Param        bsonType  query string true "BSON type"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/type [get]
func (h *Handler) Type(c *gin.Context) {
	field, ok := requiredQuery(c, "fieldName")
	if !ok {
		return
	}
	tag := c.Query("bsonType")
	if tag == "" {
		tag = c.Query("type")
	}
	f, err := filter.TypeTag(models.ResolveField(field), tag)
	if err != nil {
		badRequest(c, "bsonType must be a BSON type alias, name or code")
		return
	}
	h.find(c, f)
}

// Regex godoc
// @Summary      Name matches pattern
// @Description  pattern defaults to ^J (names starting with J).
// @Tags         Filters
// @Produce      json
// @Param        pattern query string false "Regular expression"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/regex [get]
func (h *Handler) Regex(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", defaultNamePattern)
	f, err := filter.Regex(models.FieldName, pattern)
	if err != nil {
		badRequest(c, "pattern is not a valid regular expression")
		return
	}
	h.find(c, f)
}

// All godoc
// @Summary      Skills contain every value
// @Tags         Filters
// @Produce      json
// @Param        skills query []string false "Skills" collectionFormat(multi)
// @Success      200 {array} models.Employee
// @Router       /api/mongofilters/all [get]
func (h *Handler) All(c *gin.Context) {
	h.find(c, filter.All(models.FieldSkills, c.QueryArray("skills")))
}

// ElemMatch godoc
// @Summary      Some skill equals value
// @Tags         Filters
// @Produce      json
// @Param        skill query string true "Skill"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/elemMatch [get]
func (h *Handler) ElemMatch(c *gin.Context) {
	skill, ok := requiredQuery(c, "skill")
	if !ok {
		return
	}
	h.find(c, filter.ElemMatch(models.FieldSkills, skill))
}

// Size godoc
// @Summary      Skills length equals
// @Tags         Filters
// @Produce      json
// @Param        size query int true "Number of skills"
// @Success      200 {array}  models.Employee
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/mongofilters/size [get]
func (h *Handler) Size(c *gin.Context) {
	size, ok := intQuery(c, "size")
	if !ok {
		return
	}
	if size < 0 {
		badRequest(c, "size must not be negative")
		return
	}
	h.find(c, filter.Size(models.FieldSkills, size))
}
