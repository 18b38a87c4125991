// Package validation checks incoming records against named schemas. It never
// touches storage and reports problems as data.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
)

type Schema string

const (
	SchemaSignup     Schema = "signup"
	SchemaLogin      Schema = "login"
	SchemaTask       Schema = "task"
	SchemaTaskUpdate Schema = "task_update"
	SchemaProfile    Schema = "profile"
)

// FieldBody names errors that concern the record as a whole.
const FieldBody = "body"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

// AsError returns nil for an acceptable record, otherwise ErrValidation
// carrying the field errors under details["fields"].
func (e Errors) AsError() error {
	if len(e) == 0 {
		return nil
	}
	return commonerrors.ErrValidation.WithDetails(map[string]any{"fields": e})
}

func FieldsFrom(err error) (Errors, bool) {
	if !errors.Is(err, commonerrors.ErrValidation) {
		return nil, false
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		return nil, false
	}
	fields, ok := de.Details()["fields"].(Errors)
	return fields, ok
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type rule struct {
	field string
	tags  string
	trim  bool
}

type schemaDef struct {
	rules   []rule
	partial bool
}

var (
	nameTags     = fmt.Sprintf("notblank,trimmed_max=%d", constants.NameMaxLength)
	emailTags    = fmt.Sprintf("required,max=%d,email", constants.EmailMaxLength)
	passwordTags = fmt.Sprintf("required,min=%d,max=%d,max_bytes=%d,password_strength",
		constants.PasswordMinLength, constants.PasswordMaxLength, constants.PasswordMaxLength)
	descriptionTags = fmt.Sprintf("notblank,trimmed_max=%d", constants.TaskDescriptionLimit)
)

var schemas = map[Schema]schemaDef{
	SchemaSignup: {rules: []rule{
		{field: "name", tags: nameTags, trim: true},
		{field: "email", tags: emailTags, trim: true},
		{field: "password", tags: passwordTags},
	}},
	SchemaLogin: {rules: []rule{
		{field: "email", tags: "required,email", trim: true},
		{field: "password", tags: "required"},
	}},
	SchemaTask: {rules: []rule{
		{field: "description", tags: descriptionTags, trim: true},
	}},
	SchemaTaskUpdate: {partial: true, rules: []rule{
		{field: "description", tags: descriptionTags, trim: true},
	}},
	SchemaProfile: {partial: true, rules: []rule{
		{field: "name", tags: nameTags, trim: true},
		{field: "email", tags: emailTags, trim: true},
		{field: "password", tags: passwordTags},
	}},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("trimmed_max", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= limit
	})
	_ = v.RegisterValidation("max_bytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		var hasLetter, hasDigit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})
	return v
}

// Validate checks input against schema. The result lists at most one error
// per field, in the schema's field order; an empty result means the record
// is acceptable.
func Validate(schema Schema, input Input) Errors {
	def, ok := schemas[schema]
	if !ok {
		return Errors{{Field: FieldBody, Message: fmt.Sprintf("unknown schema %q", schema)}}
	}

	values := input.fields()

	if def.partial {
		present := 0
		for _, v := range values {
			if v != nil {
				present++
			}
		}
		if present == 0 {
			return Errors{{Field: FieldBody, Message: "at least one field must be provided"}}
		}
	}

	errs := Errors{}
	for _, r := range def.rules {
		ptr := values[r.field]
		if ptr == nil && def.partial {
			continue
		}

		var value string
		if ptr != nil {
			value = *ptr
		}
		if r.trim {
			value = strings.TrimSpace(value)
		}

		if err := validate.Var(value, r.tags); err != nil {
			errs = append(errs, FieldError{Field: r.field, Message: messageFor(r.field, err)})
		}
	}
	return errs
}

func messageFor(field string, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("%s is invalid", field)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max", "trimmed_max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "max_bytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "password_strength":
		return fmt.Sprintf("%s must contain at least one letter and one digit", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
