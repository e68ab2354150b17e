package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В сообщениях используются имена полей из json-тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate проверяет теги validate у структуры запроса и возвращает читаемое описание ошибок
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("поле %s обязательно", fe.Field()))
		case "gt", "gte", "min":
			messages = append(messages, fmt.Sprintf("поле %s должно быть не меньше %s", fe.Field(), fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("поле %s должно быть не больше %s", fe.Field(), fe.Param()))
		case "email":
			messages = append(messages, fmt.Sprintf("поле %s должно быть email", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("поле %s должно быть одним из: %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("поле %s некорректно", fe.Field()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
