package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BSON field names. They match the documents written by the .NET Employee API, so
// both services can share a collection.
const (
	FieldID          = "_id"
	FieldName        = "Name"
	FieldAge         = "Age"
	FieldDesignation = "Designation"
	FieldSalary      = "Salary"
	FieldDateOfBirth = "DateOfBirth"
	FieldSkills      = "Skills"
)

// Employee is the only entity stored by the service.
type Employee struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id" swaggertype:"string" example:"665f1c2e8a1b2c3d4e5f6a7b"`
	Name        string             `bson:"Name" json:"name" example:"John Doe"`
	Age         int                `bson:"Age" json:"age" example:"30"`
	Designation string             `bson:"Designation,omitempty" json:"designation,omitempty" example:"SSE"`
	Salary      float64            `bson:"Salary,omitempty" json:"salary,omitempty" example:"15000"`
	DateOfBirth *time.Time         `bson:"DateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Skills      []string           `bson:"Skills,omitempty" json:"skills,omitempty"`
}

// Lookup returns the stored value of a BSON field and whether the field is present
// in the document. Optional fields that are empty are absent, as they are after a
// round trip through the database.
func (e Employee) Lookup(field string) (any, bool) {
	switch field {
	case FieldID:
		return e.ID, !e.ID.IsZero()
	case FieldName:
		return e.Name, true
	case FieldAge:
		return e.Age, true
	case FieldDesignation:
		return e.Designation, e.Designation != ""
	case FieldSalary:
		return e.Salary, e.Salary != 0
	case FieldDateOfBirth:
		if e.DateOfBirth == nil {
			return nil, false
		}
		return *e.DateOfBirth, true
	case FieldSkills:
		return e.Skills, len(e.Skills) > 0
	}
	return nil, false
}

// Normalize rounds DateOfBirth to what a BSON DateTime can hold: UTC with
// millisecond precision. Records are normalized before they are stored so the
// write response matches what a later read returns.
func (e *Employee) Normalize() {
	if e.DateOfBirth != nil {
		t := e.DateOfBirth.UTC().Truncate(time.Millisecond)
		e.DateOfBirth = &t
	}
}

var fieldAliases = map[string]string{
	"id":          FieldID,
	"_id":         FieldID,
	"name":        FieldName,
	"age":         FieldAge,
	"designation": FieldDesignation,
	"salary":      FieldSalary,
	"dateofbirth": FieldDateOfBirth,
	"skills":      FieldSkills,
}

// ResolveField maps a JSON or BSON field name, in any case, to its BSON name.
// Unknown names are returned unchanged.
func ResolveField(name string) string {
	if f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return name
}

// Sample records inserted when a request carries no body.
func SampleEmployee() Employee {
	return Employee{Name: "John Doe", Age: 30}
}

func SampleEmployees() []Employee {
	return []Employee{
		{Name: "Test 1", Age: 25, Designation: "SSE", Salary: 15000},
		{Name: "Test 2", Age: 35, Designation: "Team Leader", Salary: 105000},
		{Name: "Test 3", Age: 35, Designation: "Test", Salary: 151022},
		{Name: "Test 4", Age: 35, Designation: "Demo", Salary: 1500},
	}
}

func SampleReplacement() Employee {
	return Employee{Name: "Updated Name", Age: 40}
}

const SampleUpdatedName = "Partially Updated Name"
