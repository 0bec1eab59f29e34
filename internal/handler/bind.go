package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Locations prefixed to every violation's field path.
const (
	locBody  = "body"
	locQuery = "query"
	locPath  = "path"
)

var setupValidatorOnce sync.Once

// setupValidator configures gin's validator engine: field names come from
// the json, uri or form tag, and "notblank" rejects whitespace-only strings.
func setupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "uri", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// bindJSON decodes and validates a JSON body. A type mismatch on one field
// does not hide rule violations on the others, and an explicit null on an
// optional non-nullable field is rejected.
func bindJSON(c *gin.Context, obj any) error {
	var body []byte
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return translateBindError(locBody, err)
		}
		body = raw
	}

	var violations domain.ValidationErrors
	if err := binding.JSON.BindBody(body, obj); err != nil {
		violations = translateBindError(locBody, err)
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if verr := binding.Validator.ValidateStruct(obj); verr != nil {
				violations = mergeViolations(violations, translateBindError(locBody, verr))
			}
		}
		if !isFieldLevel(violations) {
			return violations
		}
	}

	violations = mergeViolations(violations, nullViolations(body, obj))
	if len(violations) > 0 {
		return violations
	}
	return nil
}

// isFieldLevel reports whether every violation names a field inside the
// body, as opposed to the body as a whole.
func isFieldLevel(violations domain.ValidationErrors) bool {
	for _, v := range violations {
		if len(v.FieldPath) < 2 {
			return false
		}
	}
	return true
}

// mergeViolations appends the entries of extra whose field is not already
// reported in base.
func mergeViolations(base, extra domain.ValidationErrors) domain.ValidationErrors {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v.Field()] = true
	}
	for _, v := range extra {
		if !seen[v.Field()] {
			seen[v.Field()] = true
			base = append(base, v)
		}
	}
	return base
}

// nullViolations reports body keys set to null for struct fields tagged
// omitnil. Those fields may be omitted but never null; encoding/json leaves
// the pointer nil for both cases, so the raw body is consulted.
func nullViolations(body []byte, obj any) domain.ValidationErrors {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}

	var out domain.ValidationErrors
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !hasRule(f.Tag.Get("binding"), "omitnil") {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		if v, ok := fields[name]; ok && v == nil {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			out = append(out, domain.ValidationError{
				FieldPath: []string{locBody, name},
				Message:   fmt.Sprintf("Input should be a valid %s", kindName(ft)),
				Type:      "null_error",
			})
		}
	}
	return out
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}

func bindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return translateBindError(locQuery, err)
	}
	return nil
}

func bindURI(c *gin.Context, obj any) error {
	if err := c.ShouldBindUri(obj); err != nil {
		return translateBindError(locPath, err)
	}
	return nil
}

// translateBindError turns a binding failure into ValidationErrors with one
// entry per violated field.
func translateBindError(loc string, err error) domain.ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make(domain.ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, domain.ValidationError{
				FieldPath: fieldPath(loc, fe.Namespace()),
				Message:   fieldMessage(fe),
				Type:      fe.Tag(),
			})
		}
		return out
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
	)
	switch {
	case errors.Is(err, io.EOF):
		return domain.ValidationErrors{{FieldPath: []string{loc}, Message: "Field required", Type: "missing"}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.ValidationErrors{{FieldPath: []string{loc}, Message: "JSON decode error", Type: "json_invalid"}}
	case errors.As(err, &typeErr):
		path := []string{loc}
		if typeErr.Field != "" {
			path = append(path, strings.Split(typeErr.Field, ".")...)
		}
		return domain.ValidationErrors{{
			FieldPath: path,
			Message:   fmt.Sprintf("Input should be a valid %s", kindName(typeErr.Type)),
			Type:      "type_error",
		}}
	case errors.As(err, &numErr):
		return domain.ValidationErrors{{
			FieldPath: []string{loc},
			Message:   fmt.Sprintf("Input should be a valid %s, unable to parse %q", numErrKind(numErr), numErr.Num),
			Type:      "parsing",
		}}
	default:
		return domain.ValidationErrors{{FieldPath: []string{loc}, Message: err.Error(), Type: "value_error"}}
	}
}

// fieldPath drops the struct name from a validator namespace such as
// "CaseRequest.case_text".
func fieldPath(loc, namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return append([]string{loc}, parts...)
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "notblank":
		return "Text cannot be empty or whitespace"
	case "min":
		if isString {
			return fmt.Sprintf("String should have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("String should have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Input should be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Input should be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param())
	case "oneof":
		return "Input should be " + quoteChoices(strings.Fields(fe.Param()))
	default:
		return fe.Error()
	}
}

// quoteChoices renders ["a" "b" "c"] as "'a', 'b' or 'c'".
func quoteChoices(choices []string) string {
	quoted := make([]string, len(choices))
	for i, ch := range choices {
		quoted[i] = "'" + ch + "'"
	}
	if len(quoted) < 2 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.Kind().String()
	}
}

func numErrKind(err *strconv.NumError) string {
	switch err.Func {
	case "ParseBool":
		return "boolean"
	case "ParseFloat":
		return "number"
	default:
		return "integer"
	}
}
