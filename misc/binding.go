package misc

import (
	"planboard/domain"
	"reflect"

	"github.com/gin-gonic/gin/binding"
)

func init() {
	binding.Validator = &CommandBindingValidator{}
}

// CommandBindingValidator makes gin report binding rule failures the way domain.ValidateCommand does,
// by json field name.
type CommandBindingValidator struct{}

func (v *CommandBindingValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		return domain.ValidateCommand(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *CommandBindingValidator) Engine() interface{} {
	return domain.CommandValidator()
}
