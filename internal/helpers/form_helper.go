package helpers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/onlyplans/server/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{8,}$`)
)

// ValidateFormData checks a submitted form-data map (keyed by field label)
// against an event's registration-form field list. All violations are
// collected and returned together, never fail-fast.
func ValidateFormData(fields []models.FormField, data map[string]any) []string {
	var errs []string

	for _, field := range fields {
		value, present := data[field.Label]
		str := stringifyValue(value)

		if !present || str == "" {
			if field.Required {
				errs = append(errs, fmt.Sprintf("%s is required", field.Label))
			}
			continue
		}

		switch field.Type {
		case models.FieldEmail:
			if !emailPattern.MatchString(str) {
				errs = append(errs, fmt.Sprintf("%s must be a valid email", field.Label))
			}
		case models.FieldNumber:
			if _, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a number", field.Label))
			}
		case models.FieldSelect:
			if len(field.Options) > 0 && !hasOption(field.Options, str) {
				errs = append(errs, fmt.Sprintf("%s must be one of the provided options", field.Label))
			}
		case models.FieldDate:
			if _, err := ParseDate(str); err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a valid date", field.Label))
			}
		case models.FieldPhone:
			if !phonePattern.MatchString(str) {
				errs = append(errs, fmt.Sprintf("%s must be a valid phone number", field.Label))
			}
		case models.FieldURL:
			if !isValidURL(str) {
				errs = append(errs, fmt.Sprintf("%s must be a valid URL", field.Label))
			}
		}
	}

	return errs
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func hasOption(options []models.FieldOption, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func isValidURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
