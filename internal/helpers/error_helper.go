package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

func AbortWithError(c *gin.Context, statusCode int, customMessage string) {
	RespondWithError(c, statusCode, customMessage)
	c.Abort()
}

// RespondWithValidationError answers 400 with one detail line per failed field.
func RespondWithValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   HTTPStatusText(http.StatusBadRequest),
		Message: "Invalid input. Please check your fields.",
		Details: ValidationDetails(err),
	})
}

func ValidationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return details
}
