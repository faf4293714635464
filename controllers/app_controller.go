package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

const statsCacheKey = "cache:stats"

// AppController exposes liveness and aggregate counters for the backing stores.
type AppController struct {
	tokens store.TokenStore
	docs   store.DocumentStore
}

func NewAppController(tokens store.TokenStore, docs store.DocumentStore) *AppController {
	return &AppController{tokens: tokens, docs: docs}
}

// Status probes both stores and always answers 200; the flags tell the story.
func (a *AppController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"redis": a.tokens.IsAlive(ctx.Request.Context()),
		"db":    a.docs.IsAlive(ctx.Request.Context()),
	})
}

// Stats returns collection counts, cached briefly to keep the endpoint cheap.
func (a *AppController) Stats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	degraded := false
	users, err := a.docs.CountUsers(ctx.Request.Context())
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("stats user count failed: %v", err)
		}
		users, degraded = 0, true
	}
	files, err := a.docs.CountFiles(ctx.Request.Context())
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("stats file count failed: %v", err)
		}
		files, degraded = 0, true
	}

	payload := gin.H{"users": users, "files": files}
	if !degraded {
		utils.CacheSetJSON(statsCacheKey, payload, time.Minute)
	}
	ctx.JSON(http.StatusOK, payload)
}
