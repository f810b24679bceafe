package filter

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// elements returns the members of an array value.
func elements(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []string:
		return toAny(a), true
	case primitive.A:
		return []any(a), true
	}
	return nil, false
}

// anyElement applies pred to each member of an array, or to v itself otherwise.
func anyElement(v any, pred func(any) bool) bool {
	if elems, ok := elements(v); ok {
		for _, e := range elems {
			if pred(e) {
				return true
			}
		}
		return false
	}
	return pred(v)
}

func containsEqual(values []any, v any) bool {
	for _, candidate := range values {
		if equal(candidate, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two scalars of the same BSON type class. ok is false when the
// values are not comparable, which never matches a range predicate.
func compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case primitive.ObjectID:
		y, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if x == y {
			return 0, true
		}
		if !x {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// TypeOf reports the BSON type a Go value is stored as by the driver's default
// codecs. Unknown values report 0.
func TypeOf(v any) bsontype.Type {
	switch n := v.(type) {
	case nil:
		return bsontype.Null
	case string:
		return bsontype.String
	case int:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return bsontype.Int32
		}
		return bsontype.Int64
	case int32:
		return bsontype.Int32
	case int64:
		return bsontype.Int64
	case float32, float64:
		return bsontype.Double
	case bool:
		return bsontype.Boolean
	case time.Time, primitive.DateTime:
		return bsontype.DateTime
	case primitive.ObjectID:
		return bsontype.ObjectID
	case primitive.Decimal128:
		return bsontype.Decimal128
	case primitive.Regex:
		return bsontype.Regex
	case []any, []string, primitive.A:
		return bsontype.Array
	case map[string]any, primitive.D, primitive.M:
		return bsontype.EmbeddedDocument
	}
	return 0
}

var typeAliases = map[string]bsontype.Type{
	"double":              bsontype.Double,
	"string":              bsontype.String,
	"object":              bsontype.EmbeddedDocument,
	"document":            bsontype.EmbeddedDocument,
	"array":               bsontype.Array,
	"bindata":             bsontype.Binary,
	"binary":              bsontype.Binary,
	"undefined":           bsontype.Undefined,
	"objectid":            bsontype.ObjectID,
	"bool":                bsontype.Boolean,
	"boolean":             bsontype.Boolean,
	"date":                bsontype.DateTime,
	"datetime":            bsontype.DateTime,
	"null":                bsontype.Null,
	"regex":               bsontype.Regex,
	"regularexpression":   bsontype.Regex,
	"dbpointer":           bsontype.DBPointer,
	"javascript":          bsontype.JavaScript,
	"symbol":              bsontype.Symbol,
	"javascriptwithscope": bsontype.CodeWithScope,
	"int":                 bsontype.Int32,
	"int32":               bsontype.Int32,
	"timestamp":           bsontype.Timestamp,
	"long":                bsontype.Int64,
	"int64":               bsontype.Int64,
	"decimal":             bsontype.Decimal128,
	"decimal128":          bsontype.Decimal128,
	"minkey":              bsontype.MinKey,
	"maxkey":              bsontype.MaxKey,
}

// ParseType accepts a MongoDB type alias ("string", "int", "objectId"), a .NET
// BsonType name ("String", "Int32", "DateTime") or one of the numeric codes MongoDB
// defines for $type (1 to 19, -1 and 127). The "number" alias is handled by TypeTag.
func ParseType(tag string) (bsontype.Type, error) {
	tag = strings.TrimSpace(tag)
	if t, ok := typeAliases[strings.ToLower(tag)]; ok {
		return t, nil
	}
	if n, err := strconv.Atoi(tag); err == nil {
		switch {
		case n == -1:
			return bsontype.MinKey, nil
		case n == int(bsontype.MaxKey), n >= int(bsontype.Double) && n <= int(bsontype.Decimal128):
			return bsontype.Type(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, tag)
}

// typeCode renders a $type operand. MongoDB spells minKey as -1, not as its 0xFF tag.
func typeCode(v any) any {
	t, ok := v.(bsontype.Type)
	if !ok {
		return v
	}
	if t == bsontype.MinKey {
		return int32(-1)
	}
	return int32(t)
}

// typeMatcher reports whether a single value has the type a $type operand names.
func typeMatcher(v any) func(any) bool {
	if v == TypeNumber {
		return isNumber
	}
	t, _ := v.(bsontype.Type)
	return func(e any) bool { return TypeOf(e) == t }
}

func isNumber(v any) bool {
	switch TypeOf(v) {
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return true
	}
	return false
}
