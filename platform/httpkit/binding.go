// Package httpkit provides schema-validation middleware for request data.
package httpkit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"courseportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Context keys for validated request sections.
const (
	bodyContextKey   = "validated.body"
	queryContextKey  = "validated.query"
	paramsContextKey = "validated.params"
)

// Body returns middleware that validates the JSON request body against the
// DTO type T. The decode is strict: unknown fields are rejected. On success
// the normalized value is stored in the context for BodyValue; on failure the
// request terminates with 422 and the full field-error map — it never reaches
// the terminal error handler.
func Body[T any](val *validator.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T

		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			abortValidation(c, "Body", decodeFieldErrors(err))
			return
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			abortValidation(c, "Body", map[string][]string{"_": {"unexpected trailing data"}})
			return
		}

		if err := val.Struct(req); err != nil {
			abortValidation(c, "Body", validator.FieldErrors(err))
			return
		}

		c.Set(bodyContextKey, req)
		c.Next()
	}
}

// Query returns middleware that validates query parameters against the DTO
// type T (form tags). String values are coerced to their typed fields, so
// handlers always see normalized data. Unknown query parameters are rejected.
func Query[T any](val *validator.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T

		if unknown := unknownQueryKeys(c, reflect.TypeOf(req)); len(unknown) > 0 {
			errs := make(map[string][]string, len(unknown))
			for _, key := range unknown {
				errs[key] = []string{"unknown query parameter"}
			}
			abortValidation(c, "Query", errs)
			return
		}

		if err := c.ShouldBindQuery(&req); err != nil {
			abortValidation(c, "Query", decodeFieldErrors(err))
			return
		}

		if err := val.Struct(req); err != nil {
			abortValidation(c, "Query", validator.FieldErrors(err))
			return
		}

		c.Set(queryContextKey, req)
		c.Next()
	}
}

// Params returns middleware that validates path parameters against the DTO
// type T (uri tags).
func Params[T any](val *validator.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T

		if err := c.ShouldBindUri(&req); err != nil {
			abortValidation(c, "Param", decodeFieldErrors(err))
			return
		}

		if err := val.Struct(req); err != nil {
			abortValidation(c, "Param", validator.FieldErrors(err))
			return
		}

		c.Set(paramsContextKey, req)
		c.Next()
	}
}

// BodyValue returns the validated body DTO stored by Body[T].
func BodyValue[T any](c *gin.Context) T {
	return contextValue[T](c, bodyContextKey)
}

// QueryValue returns the validated query DTO stored by Query[T].
func QueryValue[T any](c *gin.Context) T {
	return contextValue[T](c, queryContextKey)
}

// ParamsValue returns the validated path-parameter DTO stored by Params[T].
func ParamsValue[T any](c *gin.Context) T {
	return contextValue[T](c, paramsContextKey)
}

func contextValue[T any](c *gin.Context, key string) T {
	var zero T
	value, ok := c.Get(key)
	if !ok {
		return zero
	}
	typed, ok := value.(T)
	if !ok {
		return zero
	}
	return typed
}

func abortValidation(c *gin.Context, section string, fields map[string][]string) {
	c.Abort()
	status := http.StatusUnprocessableEntity
	JSON(c, status, NewEnvelope(status, fmt.Sprintf("%s validation error!", section)).WithErrors(fields))
}

// decodeFieldErrors maps a decode/bind error onto the field-error shape. JSON
// type mismatches and unknown fields name the offending field when the
// decoder exposes it; everything else lands under "_".
func decodeFieldErrors(err error) map[string][]string {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
		return map[string][]string{
			typeErr.Field: {fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())},
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "unknown field") {
		if field := unknownFieldName(msg); field != "" {
			return map[string][]string{field: {"unknown field"}}
		}
	}

	return map[string][]string{"_": {msg}}
}

// unknownFieldName extracts the quoted field from a DisallowUnknownFields
// error, e.g. `json: unknown field "extra"`.
func unknownFieldName(msg string) string {
	start := strings.Index(msg, `"`)
	end := strings.LastIndex(msg, `"`)
	if start < 0 || end <= start {
		return ""
	}
	return msg[start+1 : end]
}

// unknownQueryKeys compares the request's query keys against T's form tags.
func unknownQueryKeys(c *gin.Context, t reflect.Type) []string {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	known := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := strings.SplitN(t.Field(i).Tag.Get("form"), ",", 2)[0]
		if tag != "" && tag != "-" {
			known[tag] = true
		}
	}

	var unknown []string
	for key := range c.Request.URL.Query() {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
