package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/errors"
)

// RespondWithError writes err as the JSON error envelope. Errors that are not
// an *errors.AppError become a generic 500.
func RespondWithError(c *gin.Context, err error) {
	status, body := errors.ResponseFor(err)
	c.AbortWithStatusJSON(status, body)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
