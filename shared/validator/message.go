package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gt":       "{field} must be greater than {param}",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be at least {param} characters long",
	"max":      "{field} must be at most {param} characters long",
	"oneof":    "{field} must be one of [{param}]",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid UUID",
	"datetime": "{field} must match the layout {param}",
	"valid":    "{field} is invalid",
}

// jsonName reports fields by the name clients send, not the Go field name.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// message renders the first violation that has a template; the rest are dropped.
func message(err error) string {
	var violations val.ValidationErrors

	if !errors.As(err, &violations) {
		return err.Error()
	}

	for _, v := range violations {
		tmpl, ok := messages[v.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", v.Field(), "{param}", v.Param()).Replace(tmpl)
	}

	return violations.Error()
}
