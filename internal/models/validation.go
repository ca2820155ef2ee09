package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of an input that violated its constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindNumber
	kindInteger
)

func (k fieldKind) String() string {
	switch k {
	case kindBool:
		return "boolean"
	case kindNumber:
		return "number"
	case kindInteger:
		return "integer"
	default:
		return "string"
	}
}

// fieldRule declares the JSON shape of one insertable field.
type fieldRule struct {
	name     string
	kind     fieldKind
	required bool
}

func (r fieldRule) check(v any) string {
	switch r.kind {
	case kindString:
		if _, ok := v.(string); ok {
			return ""
		}
	case kindBool:
		if _, ok := v.(bool); ok {
			return ""
		}
	case kindNumber:
		if _, ok := toFloat(v); ok {
			return ""
		}
	case kindInteger:
		f, ok := toFloat(v)
		if !ok {
			break
		}
		if math.Trunc(f) != f {
			return "must be an integer"
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return "is out of range"
		}
		return ""
	}
	return "must be a " + r.kind.String()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so errors match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parse checks input against rules, decodes the well-typed fields into out
// and runs the struct's validate tags. crossField, when set, runs after
// decoding and may report extra field errors.
func parse(input map[string]any, rules []fieldRule, out any, crossField func() []FieldError) error {
	var fields []FieldError
	flagged := make(map[string]bool)
	flag := func(field, msg string) {
		if flagged[field] {
			return
		}
		flagged[field] = true
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	clean := make(map[string]any, len(rules))
	for _, r := range rules {
		v, ok := input[r.name]
		if !ok || v == nil {
			if r.required {
				flag(r.name, "is required")
			}
			continue
		}
		if msg := r.check(v); msg != "" {
			flag(r.name, msg)
			continue
		}
		clean[r.name] = v
	}

	raw, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return fmt.Errorf("decode input: %w", err)
		}
		flag(typeErr.Field, "has an invalid value")
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			flag(fe.Field(), describe(fe))
		}
	}

	if crossField != nil {
		for _, fe := range crossField() {
			flag(fe.Field, fe.Message)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	}
	return "is invalid"
}
