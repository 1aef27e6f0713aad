package memo

import (
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// Args carries positional and named arguments for operations that take more
// than one value. Named arguments are keyed by name, so their order never
// affects the derived key.
type Args struct {
	Pos   []any
	Named map[string]any
}

// Key returns the default key of calling op with a:
// "op:" followed by the hex xxh3-128 digest of a canonical JSON document
// {"args": [...], "func": op, "kwargs": {...}}.
//
// a may be an Args, a struct with only exported fields (they become named
// arguments), or any other value (a single positional argument).
func Key(op string, a any) (string, error) {
	pos, named := split(a)
	if pos == nil {
		pos = []any{}
	}
	if named == nil {
		named = map[string]any{}
	}
	doc := map[string]any{
		"func":   op,
		"args":   normalize(reflect.ValueOf(pos)),
		"kwargs": normalize(reflect.ValueOf(named)),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrapf(err, "encode arguments of %s", op)
	}
	sum := xxh3.Hash128(b).Bytes()
	return op + ":" + hex.EncodeToString(sum[:]), nil
}

func split(a any) ([]any, map[string]any) {
	switch x := a.(type) {
	case Args:
		return x.Pos, x.Named
	case *Args:
		if x == nil {
			return nil, nil
		}
		return x.Pos, x.Named
	case nil:
		return nil, nil
	}

	v := reflect.ValueOf(a)
	if v.Kind() != reflect.Struct || isStringer(v) || hasUnexported(v.Type()) {
		return []any{a}, nil
	}
	t := v.Type()
	named := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		named[t.Field(i).Name] = v.Field(i).Interface()
	}
	return nil, named
}

// hasUnexported reports whether t has a field that cannot be read through
// reflection. Such a struct is keyed by its %+v form, which includes them.
func hasUnexported(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func isStringer(v reflect.Value) bool {
	return v.IsValid() && v.Type().Implements(stringerType) && v.CanInterface()
}

// normalize turns v into something JSON can encode deterministically.
// Scalars stay as they are, containers recurse, and anything object-like is
// represented by its String() form (or %+v when it has none).
func normalize(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return floatNumber(f)
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return hex.EncodeToString(v.Bytes())
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = normalize(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = normalize(iter.Value())
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if isStringer(v) {
			return v.Interface().(fmt.Stringer).String()
		}
		return normalize(v.Elem())
	}
	return opaque(v)
}

// floatNumber encodes f so that it never collides with an integer:
// 1.0 becomes "1.0", not "1".
func floatNumber(f float64) json.Number {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return json.Number(s)
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func opaque(v reflect.Value) string {
	if !v.CanInterface() {
		return v.String()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%+v", v.Interface())
}
