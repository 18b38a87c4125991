package validation

import (
	"errors"
	"strings"
	"testing"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
)

func strPtr(s string) *string { return &s }

func fieldNames(errs Errors) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidate_TaskDescriptionLength(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantErr     bool
	}{
		{name: "empty", description: "", wantErr: true},
		{name: "whitespace only", description: "   \t ", wantErr: true},
		{name: "single char", description: "a", wantErr: false},
		{name: "exactly 250", description: strings.Repeat("a", 250), wantErr: false},
		{name: "251", description: strings.Repeat("a", 251), wantErr: true},
		{name: "250 with padding", description: "  " + strings.Repeat("a", 250) + "  ", wantErr: false},
		{name: "250 multibyte", description: strings.Repeat("é", 250), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(SchemaTask, Task{Description: tt.description})
			if tt.wantErr && len(errs) == 0 {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && len(errs) != 0 {
				t.Fatalf("unexpected errors: %+v", errs)
			}
			if tt.wantErr && errs[0].Field != "description" {
				t.Errorf("expected description field, got %q", errs[0].Field)
			}
		})
	}
}

func TestValidate_Signup(t *testing.T) {
	tests := []struct {
		name       string
		input      Signup
		wantFields []string
	}{
		{
			name:  "valid",
			input: Signup{Name: "Ana", Email: "ana@x.com", Password: "Secr3t!"},
		},
		{
			name:  "email with surrounding spaces",
			input: Signup{Name: "Ana", Email: "  ana@x.com ", Password: "Secr3t!"},
		},
		{
			name:       "everything missing",
			input:      Signup{},
			wantFields: []string{"name", "email", "password"},
		},
		{
			name:       "name too long",
			input:      Signup{Name: strings.Repeat("n", 51), Email: "ana@x.com", Password: "Secr3t!"},
			wantFields: []string{"name"},
		},
		{
			name:       "bad email",
			input:      Signup{Name: "Ana", Email: "not-an-email", Password: "Secr3t!"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			input:      Signup{Name: "Ana", Email: "ana@x.com", Password: "a1"},
			wantFields: []string{"password"},
		},
		{
			name:       "password without digit",
			input:      Signup{Name: "Ana", Email: "ana@x.com", Password: "secret!"},
			wantFields: []string{"password"},
		},
		{
			name:       "password too long",
			input:      Signup{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("a1", 37)},
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldNames(Validate(SchemaSignup, tt.input))
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Fatalf("expected fields %v, got %v", tt.wantFields, got)
			}
		})
	}
}

func TestValidate_Login(t *testing.T) {
	if errs := Validate(SchemaLogin, Login{Email: "ana@x.com", Password: "x"}); len(errs) != 0 {
		t.Fatalf("login only requires a password to be present, got %+v", errs)
	}

	errs := Validate(SchemaLogin, Login{Email: "ana", Password: ""})
	if got := fieldNames(errs); strings.Join(got, ",") != "email,password" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestValidate_Profile(t *testing.T) {
	errs := Validate(SchemaProfile, Profile{})
	if len(errs) != 1 || errs[0].Field != FieldBody {
		t.Fatalf("expected a single body error for empty update, got %+v", errs)
	}

	if errs := Validate(SchemaProfile, Profile{Name: strPtr("Ana Maria")}); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}

	errs = Validate(SchemaProfile, Profile{Name: strPtr("  "), Email: strPtr("bad")})
	if got := fieldNames(errs); strings.Join(got, ",") != "name,email" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestValidate_TaskUpdate(t *testing.T) {
	if errs := Validate(SchemaTaskUpdate, TaskUpdate{}); len(errs) != 1 || errs[0].Field != FieldBody {
		t.Fatalf("expected body error, got %+v", errs)
	}

	done := true
	if errs := Validate(SchemaTaskUpdate, TaskUpdate{Completed: &done}); len(errs) != 0 {
		t.Fatalf("completed-only update must pass, got %+v", errs)
	}

	if errs := Validate(SchemaTaskUpdate, TaskUpdate{Description: strPtr(strings.Repeat("a", 251))}); len(errs) != 1 {
		t.Fatalf("expected description error, got %+v", errs)
	}
}

func TestErrors_AsError(t *testing.T) {
	if err := (Errors{}).AsError(); err != nil {
		t.Fatalf("expected nil for empty errors, got %v", err)
	}

	errs := Errors{{Field: "description", Message: "description is required"}}
	err := errs.AsError()
	if !errors.Is(err, commonerrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	fields, ok := FieldsFrom(err)
	if !ok || len(fields) != 1 || fields[0].Field != "description" {
		t.Fatalf("unexpected fields: %+v, %v", fields, ok)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@X.Com "); got != "ana@x.com" {
		t.Fatalf("expected ana@x.com, got %q", got)
	}
}
