package inspection

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// StepCount is the number of wizard steps whose sub-objects may carry item
// fields (step1Data .. step5Data).
const StepCount = 5

// Accessor is one candidate location of a field inside a raw item, e.g.
// ["pipeBrand"] or ["step2Data", "hoseBrand"].
type Accessor struct {
	Path []string
}

func (a Accessor) String() string { return strings.Join(a.Path, ".") }

// Lookup walks the path through obj and returns the value found there as a
// string. ok is false when the value is missing, null, empty or not a scalar.
func (a Accessor) Lookup(obj map[string]any) (string, bool) {
	var cur any = obj
	for _, key := range a.Path {
		m, ok := asObject(cur)
		if !ok {
			return "", false
		}
		if cur, ok = m[key]; !ok {
			return "", false
		}
	}
	return scalar(cur)
}

// resolution holds the ordered accessor chain of every field, keyed by field
// key. It is built once from the field table.
var resolution = buildResolution(fields)

func buildResolution(fs []Field) map[string][]Accessor {
	out := make(map[string][]Accessor, len(fs))
	for _, f := range fs {
		out[f.Key] = chain(f.Key, f.Alt)
	}
	return out
}

// chain lists where a field may live, highest priority first: the flat
// camelCase key, the flat PascalCase key, then inside each step sub-object
// the alternate name followed by the PascalCase name.
func chain(key, alt string) []Accessor {
	pascal := pascalCase(key)
	out := []Accessor{{Path: []string{key}}, {Path: []string{pascal}}}
	for step := 1; step <= StepCount; step++ {
		sub := fmt.Sprintf("step%dData", step)
		if alt != "" {
			out = append(out, Accessor{Path: []string{sub, alt}})
		}
		out = append(out, Accessor{Path: []string{sub, pascal}})
	}
	return out
}

// Resolution returns the accessor chain for field key, in priority order.
func Resolution(key string) []Accessor {
	acc := resolution[key]
	out := make([]Accessor, len(acc))
	copy(out, acc)
	return out
}

func resolve(obj map[string]any, key string) string {
	for _, acc := range resolution[key] {
		if v, ok := acc.Lookup(obj); ok {
			return v
		}
	}
	return ""
}

func pascalCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// asObject accepts the map shapes produced by encoding/json and yaml.v3,
// and any other map keyed by strings.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// scalar converts a decoded value into its report string.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case bool:
		if x {
			return CodeYes, true
		}
		return CodeNo, true
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format(time.RFC3339), true
	}
	return reflectScalar(v)
}

// reflectScalar covers the remaining numeric, string and bool kinds,
// including named types.
func reflectScalar(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Bool:
		return scalar(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}
