package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into
// a 400 with one readable line per failing field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	lines := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		lines = append(lines, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, strings.Join(lines, "; "))
}
