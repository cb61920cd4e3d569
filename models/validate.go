package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce   sync.Once
	signalValidate *validator.Validate
)

func signalValidator() *validator.Validate {
	validateOnce.Do(func() {
		signalValidate = validator.New()
		signalValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = signalValidate.RegisterValidation("pestel", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
	})
	return signalValidate
}

// FieldIssue names one rejected field of a signal.
type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value,omitempty"`
}

func (f FieldIssue) String() string {
	if f.Value == "" {
		return fmt.Sprintf("%s (%s)", f.Field, f.Rule)
	}
	return fmt.Sprintf("%s=%s (%s)", f.Field, f.Value, f.Rule)
}

// ValidateSignal checks required text fields, the category and score ranges.
// Blank strings count as missing.
func ValidateSignal(s Signal) []FieldIssue {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.Source = strings.TrimSpace(s.Source)

	err := signalValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldIssue{{Field: "signal", Rule: err.Error()}}
	}
	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issue := FieldIssue{Field: fe.Field(), Rule: fe.Tag()}
		if fe.Tag() != "required" {
			issue.Value = fmt.Sprint(fe.Value())
		}
		issues = append(issues, issue)
	}
	return issues
}
