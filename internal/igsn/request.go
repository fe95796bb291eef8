package igsn

import (
	"strconv"
	"strings"
)

// RegistrationRequest is the canonical form of an entry's embedded
// identifier-issuance instructions. Two historical payload shapes feed it:
// flat igsn_* keys alongside a nested igsn metadata object, and a fully
// nested igsn object carrying its own request fields. The nested shape wins
// when both could apply.
type RegistrationRequest struct {
	Prefix      string
	Suffix      string
	Field       string
	Title       string
	Description string
	Track       bool
	BatchMethod string
	BatchData   map[string]interface{}
	// Nested records which shape carried the request fields, so rewrites
	// after registration land in the same fields the request came from.
	Nested bool
}

// ParseRegistrationRequest normalizes data into a RegistrationRequest.
// Returns false when the payload does not request issuance.
func ParseRegistrationRequest(data map[string]interface{}) (RegistrationRequest, bool) {
	nested := AsMap(data["igsn"])
	if nested != nil {
		if _, ok := nested["request"]; ok {
			return parseNested(nested)
		}
	}
	return parseFlat(data, nested)
}

func parseNested(nested map[string]interface{}) (RegistrationRequest, bool) {
	if !AsBool(nested["request"]) {
		return RegistrationRequest{}, false
	}
	req := RegistrationRequest{
		Prefix:      AsString(nested["prefix"]),
		Suffix:      AsString(nested["suffix"]),
		Field:       AsString(nested["field"]),
		Title:       AsString(nested["title"]),
		Description: AsString(nested["description"]),
		Track:       AsBool(nested["track"]),
		BatchData:   nested,
		Nested:      true,
	}
	req.BatchMethod = batchMethod(nested)
	return req, true
}

func parseFlat(data, nested map[string]interface{}) (RegistrationRequest, bool) {
	if !AsBool(data["igsn_request"]) {
		return RegistrationRequest{}, false
	}
	req := RegistrationRequest{
		Prefix:    AsString(data["igsn_prefix"]),
		Suffix:    AsString(data["igsn_suffix"]),
		Field:     AsString(data["igsn_field"]),
		Track:     AsBool(data["igsn_track"]),
		BatchData: nested,
	}
	if nested != nil {
		req.Title = AsString(nested["title"])
		req.Description = AsString(nested["description"])
	}
	req.BatchMethod = batchMethod(nested)
	return req, true
}

func batchMethod(data map[string]interface{}) string {
	if data == nil {
		return BatchMethodGrid
	}
	if batch := AsMap(data["batch"]); batch != nil {
		if method := AsString(batch["method"]); method != "" {
			return method
		}
	}
	return BatchMethodGrid
}

// AsString coerces a decoded JSON value to a string, or "".
func AsString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// AsBool coerces a decoded JSON value to a bool; string "true"/"false" and
// numeric forms are accepted for historical payloads.
func AsBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.ToLower(t))
		return err == nil && b
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

// AsInt coerces a decoded JSON number (or numeric string) to an int, or 0.
func AsInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// AsMap coerces a decoded JSON value to a map, or nil.
func AsMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// AsSlice coerces a decoded JSON value to a slice, or nil.
func AsSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
