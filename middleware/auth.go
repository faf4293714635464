package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

// ContextUserIDKey is the key used to store the authenticated user id in Gin context.
const ContextUserIDKey = "user_id"

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// AuthRequired resolves the X-Token header against the token store and aborts
// with the generic 401 body when it is absent, unknown, or expired.
func AuthRequired(tokens store.TokenStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader(TokenHeader)
		if token == "" {
			utils.Unauthorized(ctx)
			ctx.Abort()
			return
		}

		userID, err := tokens.Resolve(ctx.Request.Context(), token)
		if errors.Is(err, store.ErrTokenNotFound) {
			utils.Unauthorized(ctx)
			ctx.Abort()
			return
		}
		if err != nil {
			utils.Internal(ctx, err)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

// CurrentUserID reads the identity set by AuthRequired.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
