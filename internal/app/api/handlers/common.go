package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// writeError maps a service error to its HTTP status and envelope.
func writeError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(apperr.CodeOf(err)), response.FromError(err))
}

// pathID parses a positive integer id path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, apperr.New(apperr.CodeInvalidInput, "invalid "+name))
		return 0, false
	}
	return id, true
}
