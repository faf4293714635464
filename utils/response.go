package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorBody is the uniform error payload for every failing response.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorJSON writes a JSON error with the given status code.
func ErrorJSON(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, errorBody{Error: message})
}

// Unauthorized writes the generic 401 body. The message never distinguishes
// bad credentials from unknown users or expired tokens.
func Unauthorized(ctx *gin.Context) {
	ErrorJSON(ctx, http.StatusUnauthorized, "Unauthorized")
}

// NotFound writes the generic 404 body, the same for absent resources and
// resources hidden from the requester.
func NotFound(ctx *gin.Context) {
	ErrorJSON(ctx, http.StatusNotFound, "Not found")
}

// Internal logs the unexpected error and writes a generic 500 body.
func Internal(ctx *gin.Context, err error) {
	if Sugar != nil {
		Sugar.Errorf("internal error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}
	ErrorJSON(ctx, http.StatusInternalServerError, "Internal error")
}
