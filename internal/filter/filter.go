// Package filter holds the single-predicate queries the service runs against the
// employee collection. A Filter renders itself as a MongoDB query document for the
// mongo backend and evaluates itself in process for the sqlite and memory backends.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Op string

const (
	OpEmpty     Op = ""
	OpEq        Op = "$eq"
	OpNe        Op = "$ne"
	OpGt        Op = "$gt"
	OpGte       Op = "$gte"
	OpLt        Op = "$lt"
	OpLte       Op = "$lte"
	OpIn        Op = "$in"
	OpNin       Op = "$nin"
	OpAnd       Op = "$and"
	OpOr        Op = "$or"
	OpExists    Op = "$exists"
	OpType      Op = "$type"
	OpRegex     Op = "$regex"
	OpAll       Op = "$all"
	OpElemMatch Op = "$elemMatch"
	OpSize      Op = "$size"
)

var (
	ErrInvalidPattern = errors.New("invalid regular expression")
	ErrInvalidType    = errors.New("unknown bson type")
)

// Document is anything a Filter can be evaluated against.
type Document interface {
	Lookup(field string) (any, bool)
}

// Filter is one predicate, or a conjunction/disjunction of predicates.
type Filter struct {
	Op      Op
	Field   string
	Value   any
	Values  []any
	Filters []Filter

	re *regexp.Regexp
}

// Empty matches every document.
func Empty() Filter { return Filter{} }

func Eq(field string, v any) Filter  { return Filter{Op: OpEq, Field: field, Value: v} }
func Ne(field string, v any) Filter  { return Filter{Op: OpNe, Field: field, Value: v} }
func Gt(field string, v any) Filter  { return Filter{Op: OpGt, Field: field, Value: v} }
func Gte(field string, v any) Filter { return Filter{Op: OpGte, Field: field, Value: v} }
func Lt(field string, v any) Filter  { return Filter{Op: OpLt, Field: field, Value: v} }
func Lte(field string, v any) Filter { return Filter{Op: OpLte, Field: field, Value: v} }

func In[T any](field string, values []T) Filter {
	return Filter{Op: OpIn, Field: field, Values: toAny(values)}
}

func Nin[T any](field string, values []T) Filter {
	return Filter{Op: OpNin, Field: field, Values: toAny(values)}
}

// All matches array fields containing every one of values.
func All[T any](field string, values []T) Filter {
	return Filter{Op: OpAll, Field: field, Values: toAny(values)}
}

func And(filters ...Filter) Filter { return Filter{Op: OpAnd, Filters: filters} }
func Or(filters ...Filter) Filter  { return Filter{Op: OpOr, Filters: filters} }

func Exists(field string) Filter { return Filter{Op: OpExists, Field: field, Value: true} }

func Type(field string, t bsontype.Type) Filter {
	return Filter{Op: OpType, Field: field, Value: t}
}

// TypeNumber is MongoDB's $type alias for any numeric value: double, int, long
// or decimal.
const TypeNumber = "number"

// TypeTag builds a $type filter from a tag accepted by ParseType or from the
// "number" alias.
func TypeTag(field, tag string) (Filter, error) {
	if strings.EqualFold(strings.TrimSpace(tag), TypeNumber) {
		return Filter{Op: OpType, Field: field, Value: TypeNumber}, nil
	}
	t, err := ParseType(tag)
	if err != nil {
		return Filter{}, err
	}
	return Type(field, t), nil
}

// ElemMatch matches array fields with at least one element equal to v.
func ElemMatch(field string, v any) Filter {
	return Filter{Op: OpElemMatch, Field: field, Value: v}
}

func Size(field string, n int) Filter { return Filter{Op: OpSize, Field: field, Value: n} }

// Regex compiles pattern up front so a bad pattern is rejected before any query runs.
func Regex(field, pattern string) (Filter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return Filter{Op: OpRegex, Field: field, Value: pattern, re: re}, nil
}

func toAny[T any](values []T) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// BSON renders the filter as a MongoDB query document.
func (f Filter) BSON() bson.D {
	switch f.Op {
	case OpEmpty:
		return bson.D{}
	case OpAnd, OpOr:
		parts := make(bson.A, 0, len(f.Filters))
		for _, sub := range f.Filters {
			parts = append(parts, sub.BSON())
		}
		return bson.D{{Key: string(f.Op), Value: parts}}
	case OpIn, OpNin, OpAll:
		values := bson.A(f.Values)
		if values == nil {
			values = bson.A{}
		}
		return field(f.Field, string(f.Op), values)
	case OpType:
		return field(f.Field, string(f.Op), typeCode(f.Value))
	case OpRegex:
		pattern, _ := f.Value.(string)
		return bson.D{{Key: f.Field, Value: primitive.Regex{Pattern: pattern}}}
	case OpElemMatch:
		return field(f.Field, string(f.Op), bson.D{{Key: string(OpEq), Value: f.Value}})
	default:
		return field(f.Field, string(f.Op), f.Value)
	}
}

func field(name, op string, v any) bson.D {
	return bson.D{{Key: name, Value: bson.D{{Key: op, Value: v}}}}
}

// Match reports whether d satisfies the filter, following MongoDB query semantics
// for the operators this package supports.
func (f Filter) Match(d Document) bool {
	switch f.Op {
	case OpEmpty:
		return true
	case OpAnd:
		for _, sub := range f.Filters {
			if !sub.Match(d) {
				return false
			}
		}
		return true
	case OpOr:
		for _, sub := range f.Filters {
			if sub.Match(d) {
				return true
			}
		}
		return false
	}

	v, present := d.Lookup(f.Field)
	switch f.Op {
	case OpExists:
		want, _ := f.Value.(bool)
		return present == want
	case OpNe:
		return !present || !anyElement(v, func(e any) bool { return equal(e, f.Value) })
	case OpNin:
		return !present || !anyElement(v, func(e any) bool { return containsEqual(f.Values, e) })
	}
	if !present {
		return false
	}

	switch f.Op {
	case OpEq:
		return anyElement(v, func(e any) bool { return equal(e, f.Value) })
	case OpGt, OpGte, OpLt, OpLte:
		return anyElement(v, func(e any) bool {
			c, ok := compare(e, f.Value)
			if !ok {
				return false
			}
			switch f.Op {
			case OpGt:
				return c > 0
			case OpGte:
				return c >= 0
			case OpLt:
				return c < 0
			default:
				return c <= 0
			}
		})
	case OpIn:
		return anyElement(v, func(e any) bool { return containsEqual(f.Values, e) })
	case OpAll:
		elems, ok := elements(v)
		if !ok || len(f.Values) == 0 {
			return false
		}
		for _, want := range f.Values {
			if !containsEqual(elems, want) {
				return false
			}
		}
		return true
	case OpElemMatch:
		elems, ok := elements(v)
		return ok && containsEqual(elems, f.Value)
	case OpSize:
		elems, ok := elements(v)
		n, _ := f.Value.(int)
		return ok && len(elems) == n
	case OpType:
		is := typeMatcher(f.Value)
		if is(v) {
			return true
		}
		return f.Value != bsontype.Array && anyElement(v, is)
	case OpRegex:
		re := f.re
		if re == nil {
			pattern, _ := f.Value.(string)
			var err error
			if re, err = regexp.Compile(pattern); err != nil {
				return false
			}
		}
		return anyElement(v, func(e any) bool {
			s, ok := e.(string)
			return ok && re.MatchString(s)
		})
	}
	return false
}
