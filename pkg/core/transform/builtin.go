package transform

import (
	"fmt"
	"reflect"
	"strings"
)

func init() {
	Register("identity", Identity)
	Register("first", func(v any) (any, error) {
		rv, err := sequence(v)
		if err != nil || rv.Len() == 0 {
			return nil, err
		}
		return rv.Index(0).Interface(), nil
	})
	Register("count", func(v any) (any, error) {
		rv, err := sequence(v)
		if err != nil {
			return nil, err
		}
		return rv.Len(), nil
	})
	RegisterFor("trim", func(s string) (any, error) {
		return strings.TrimSpace(s), nil
	})
}

// sequence accepts slices and arrays of any element type so typed results
// from local handlers and []any from decoded JSON behave the same.
func sequence(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("transform: expected a list, got %T", v)
}
