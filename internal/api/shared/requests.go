package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// MaxBodyBytes caps request bodies; catalog and member payloads are small.
const MaxBodyBytes = 1 << 20

// Validate is the shared validator with the library's custom tags installed.
// Errors name fields by their JSON key.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := domain.NewValidator()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// ValidateRequest validates v. Types with their own Validate method use it;
// everything else goes through the struct validator.
func ValidateRequest(v interface{}) error {
	if vr, ok := v.(interface{ Validate() error }); ok {
		return vr.Validate()
	}
	return Validate.Struct(v)
}

// PathID parses a positive integer path parameter.
func PathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, fmt.Sprintf("must be a positive integer, got %q", raw), domain.ErrInvalidID)
	}
	return id, nil
}
