// Package respond writes the {success, ...} JSON envelope used by every API
// route and decodes/validates request bodies.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match the
// request body the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope; key/value pairs are merged into the body.
func OK(w http.ResponseWriter, status int, kv ...interface{}) {
	body := map[string]interface{}{"success": true}
	for i := 0; i+1 < len(kv); i += 2 {
		body[fmt.Sprint(kv[i])] = kv[i+1]
	}
	JSON(w, status, body)
}

// Error maps err onto the taxonomy, logs the cause and writes the short
// client message. Causes never reach the response body.
func Error(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	e := apperr.As(err)
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.Int("status", e.Status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if e.Status >= http.StatusInternalServerError {
		log.Error(e.Message, fields...)
	} else {
		log.Warn(e.Message, fields...)
	}
	JSON(w, e.Status, map[string]interface{}{"success": false, "error": e.Message})
}

// Decode reads a JSON body into v and runs its validate tags.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return Validate(v)
}

// Validate runs struct validation and formats the first failures into a
// ValidationError.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Validation("invalid request")
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, formatFieldError(fe))
		}
		return apperr.Validation(strings.Join(msgs, "; "))
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
