package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ClusterNamePattern matches names made of word characters optionally surrounded by whitespace.
var ClusterNamePattern = regexp.MustCompile(`^\s*\w*\s*$`)

func clusterName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != "" && ClusterNamePattern.MatchString(value)
}

// RegisterValidation registers the custom tags with the validator gin binds requests with.
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("error getting validation engine")
	}

	return v.RegisterValidation("clusterName", clusterName)
}

// validationMessage turns the errors of the validator into a message the console can show as is.
// It returns false if err does not come from the validator.
func validationMessage(err error) (string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", false
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldMessage(fieldError))
	}
	return strings.Join(messages, ", "), true
}

func fieldMessage(fieldError validator.FieldError) string {
	field := fieldError.Namespace()
	// drop the name of the request type
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "clusterName":
		return fmt.Sprintf("%q is not a valid remote cluster name, use letters, digits and underscores only", fieldError.Value())
	default:
		return fmt.Sprintf("%s failed on %s", field, fieldError.Tag())
	}
}
