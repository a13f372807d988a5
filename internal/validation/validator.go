// Package validation validates request bodies with go-playground/validator and
// turns failures into domain validation errors with per-field details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the song-specific tags registered:
//
//	sectionkind   a known domain.SectionKind (NULL included)
//	performer     an assignee id that is not a sentinel
//	assignee      a performer id or ALL / NONE
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("sectionkind", func(fl validator.FieldLevel) bool {
		return domain.SectionKind(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("performer", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return id != "" && !domain.IsSentinelAssignee(id)
	})
	_ = v.RegisterValidation("assignee", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return id != "" && id != domain.AssigneeUnassigned
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = v.friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "segments[1]" rather than "SplitPartBody.segments[1]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	sized := e.Kind() == reflect.String || e.Kind() == reflect.Slice || e.Kind() == reflect.Map
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if sized {
			return fmt.Sprintf("must have at least %s elements", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if sized {
			return fmt.Sprintf("must not exceed %s elements", e.Param())
		}
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "gtefield":
		return "must be greater than or equal to " + e.Param()
	case "ne":
		return "must not be " + e.Param()
	case "unique":
		return "must not contain duplicates"
	case "sectionkind":
		return "must be a known section kind"
	case "performer":
		return "must be a performer id, not ALL, NONE or UNASSIGNED"
	case "assignee":
		return "must be a performer id, ALL or NONE"
	default:
		return "is invalid"
	}
}
