// Package mcputils binds loosely typed MCP tool arguments to structs.
package mcputils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// ErrInvalidArguments is returned when arguments cannot be bound or fail
// validation.
var ErrInvalidArguments = errors.New("invalid arguments")

var validate = func() *validator.Validate {
	v := validator.New()
	// Report fields by their argument names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// CoerceBindArguments binds request arguments to target using json tags,
// then checks target's validate tags.
//
// String arguments are trimmed, so a blank required value fails validation.
// Scalars sent with the wrong JSON type are converted weakly.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       trimStringHook,
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(request.GetArguments()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, describe(err))
	}
	return nil
}

// trimStringHook strips surrounding whitespace from string inputs.
func trimStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}

// describe lists each failing argument with the rule it broke.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
