package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var commandValidator = newCommandValidator()

// newCommandValidator checks the same tags gin binds with and names fields by their json or form names.
func newCommandValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// CommandValidator exposes the validator behind ValidateCommand.
func CommandValidator() *validator.Validate {
	return commandValidator
}

// ValidateCommand returns a ValidationError naming every field which breaks its binding rules.
func ValidateCommand(c interface{}) error {
	err := commandValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldsErr validator.ValidationErrors
	if !errors.As(err, &fieldsErr) {
		return NewValidationError("%s", err.Error())
	}
	messages := make([]string, 0, len(fieldsErr))
	for _, fe := range fieldsErr {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		messages = append(messages, "field '"+fe.Field()+"' failed on '"+rule+"'")
	}
	return NewValidationError("%s", strings.Join(messages, "; "))
}
