package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"orderdesk/internal/models"
)

// reader walks a decoded JSON payload and remembers the first structural error.
// Missing and null fields read as their zero value.
type reader struct {
	channel models.Source
	err     error
}

func (r *reader) fail(field, reason string) {
	if r.err == nil {
		r.err = &NormalizationError{Channel: r.channel, Field: field, Reason: reason}
	}
}

func (r *reader) object(m map[string]any, key string) map[string]any {
	switch v := m[key].(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	default:
		r.fail(key, fmt.Sprintf("must be an object, got %T", v))
		return map[string]any{}
	}
}

func (r *reader) array(m map[string]any, key string) []any {
	switch v := m[key].(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		r.fail(key, fmt.Sprintf("must be an array, got %T", v))
		return nil
	}
}

func (r *reader) text(m map[string]any, key string) string {
	switch m[key].(type) {
	case map[string]any, []any:
		r.fail(key, "must be a scalar")
		return ""
	}
	return strings.TrimSpace(stringify(m[key]))
}

// products renders line items as "name (Qty: n)"
func (r *reader) products(m map[string]any, key string) models.ProductList {
	list := models.ProductList{}
	for i, raw := range r.array(m, key) {
		item, ok := raw.(map[string]any)
		if !ok {
			r.fail(fmt.Sprintf("%s[%d]", key, i), "must be an object")
			return list
		}
		qty := r.text(item, "quantity")
		if qty == "" {
			qty = "1"
		}
		list = append(list, fmt.Sprintf("%s (Qty: %s)", r.text(item, "name"), qty))
	}
	return list
}

// stringify renders a scalar the way it appeared in the payload
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// truthy follows JSON-ish truthiness: false, 0, "", null and empty containers are false
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// isOne matches 1, 1.0, "1" and true
func isOne(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "1"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	case float64:
		return t == 1
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinAddress(parts ...string) string {
	return strings.Join(parts, ", ")
}

func containsAnyFold(s string, needles ...string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
