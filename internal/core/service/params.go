package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params holds service- or model-specific settings. Values arrive from Go
// code, JSON and YAML, so the accessors accept every shape those decoders
// produce ([]any for lists, float64/int/json.Number for numbers).
type Params map[string]any

// Clone returns a deep copy. Nested slices and maps are copied so editors can
// return new params without aliasing the input.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case []string:
		return append([]string{}, vv...)
	case []any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = cloneValue(vv[i])
		}
		return out
	case map[string]any:
		return map[string]any(Params(vv).Clone())
	case Params:
		return vv.Clone()
	default:
		return v
	}
}

// With returns a copy of p with key set to value.
func (p Params) With(key string, value any) Params {
	out := p.Clone()
	out[key] = value
	return out
}

// Merge returns a copy of p overlaid with other.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other {
		out[k] = cloneValue(v)
	}
	return out
}

// String returns the value for key as a string, or "" if absent.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return FormatValue(v)
	}
}

// Int returns the value for key as an int, or def if absent or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the value for key as a bool, or def if absent or not boolean.
func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Strings returns the value for key as a string slice. Non-string list
// elements are formatted; a missing key yields an empty (non-nil) slice.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, FormatValue(item))
			}
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	}
	return []string{}
}

// SortedKeys returns the keys in lexical order.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders a parameter value the way it appears on a command line.
func FormatValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(vv), 'f', -1, 32)
	case json.Number:
		return vv.String()
	case []string:
		return strings.Join(vv, ",")
	case []any:
		parts := make([]string, len(vv))
		for i := range vv {
			parts[i] = FormatValue(vv[i])
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(vv)
	}
}

// ParseValue converts a command-line string into the most specific scalar:
// bool, integer, float, then string.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
