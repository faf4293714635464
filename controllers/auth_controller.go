package controllers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hxzhou/filebin/middleware"
	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 24 * time.Hour

// AuthController issues and revokes session tokens against the token and
// document stores.
type AuthController struct {
	tokens store.TokenStore
	docs   store.DocumentStore
}

func NewAuthController(tokens store.TokenStore, docs store.DocumentStore) *AuthController {
	return &AuthController{tokens: tokens, docs: docs}
}

// Connect authenticates Basic credentials and mints a fresh opaque token.
// Every failure mode answers the same generic 401.
func (a *AuthController) Connect(ctx *gin.Context) {
	email, password, ok := decodeBasicAuth(ctx.GetHeader("Authorization"))
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	user, err := a.docs.UserByEmail(ctx.Request.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		utils.Unauthorized(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		utils.Unauthorized(ctx)
		return
	}

	token := uuid.NewString()
	if err := a.tokens.Save(ctx.Request.Context(), token, user.ID, TokenTTL); err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

// Disconnect revokes the token carried in X-Token. Revoking an unknown or
// already-revoked token is an error, not a no-op.
func (a *AuthController) Disconnect(ctx *gin.Context) {
	token := ctx.GetHeader(middleware.TokenHeader)
	if token == "" {
		utils.Unauthorized(ctx)
		return
	}

	err := a.tokens.Delete(ctx.Request.Context(), token)
	if errors.Is(err, store.ErrTokenNotFound) {
		utils.Unauthorized(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// decodeBasicAuth extracts an email:password pair from a Basic authorization
// header. Both halves must be non-empty.
func decodeBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}
