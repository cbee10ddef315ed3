package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params are request parameters. A nil value, including a typed nil
// pointer, map or slice, means the parameter is absent and is not sent.
type Params map[string]interface{}

// Optional returns s, or nil when s is empty.
func Optional(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// OptionalInt returns n, or nil when n is zero.
func OptionalInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// Join returns the elements of list joined by sep, or nil when list is
// empty.
func Join(list []string, sep string) interface{} {
	if len(list) == 0 {
		return nil
	}
	return strings.Join(list, sep)
}

// compact returns the parameters that are present, with pointers
// dereferenced.
func (p Params) compact() map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for k, v := range p {
		if v, ok := present(v); ok {
			out[k] = v
		}
	}
	return out
}

func present(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return present(rv.Elem().Interface())
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	}
	return v, true
}

// encodeQuery percent-encodes params in key order. Spaces become %20.
func encodeQuery(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+escape(format(params[k])))
	}
	return strings.Join(pairs, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func format(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []string:
		return strings.Join(t, ",")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
