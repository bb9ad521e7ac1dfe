package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"marketplace/shared/failure"
	"reflect"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

type selfValidator interface {
	Validate() error
}

// registerSelfValidation backs the `valid` tag: the field passes when its Validate method returns nil.
func registerSelfValidation(fl val.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr && field.IsNil() {
		return true
	}

	v, ok := field.Interface().(selfValidator)
	if !ok {
		return false
	}

	return v.Validate() == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	err := validate.RegisterValidation("valid", registerSelfValidation)
	if err != nil {
		panic(err)
	}

}

// Validate decodes a JSON request body into data and checks its validate tags.
// Unknown fields are rejected so typos in money fields do not silently default to zero.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.Validation(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.Validation(msg) //nolint:wrapcheck
	}

	return nil
}
