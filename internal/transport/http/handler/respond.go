package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Every response uses the same envelope: {"success":true,"data":{...}}
// on the happy path, {"success":false,"message":"..."} otherwise.

func respondOK(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// bindingMessage flattens gin's binding errors into one human-readable
// sentence. Only the first field error is reported.
func bindingMessage(err error) string {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) && len(verr) > 0 {
		fe := verr[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return "Please include a valid email"
		case "min":
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		case "oneof":
			return fe.Field() + " must be one of: " + fe.Param()
		}
		return "Invalid value for " + fe.Field()
	}
	return "Invalid request body"
}
