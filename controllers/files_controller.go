package controllers

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hxzhou/filebin/middleware"
	"github.com/hxzhou/filebin/models"
	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

// FilesController orchestrates metadata CRUD, hierarchy validation, and
// visibility-gated content serving.
type FilesController struct {
	tokens store.TokenStore
	docs   store.DocumentStore
	blobs  store.BlobStore
}

func NewFilesController(tokens store.TokenStore, docs store.DocumentStore, blobs store.BlobStore) *FilesController {
	return &FilesController{tokens: tokens, docs: docs, blobs: blobs}
}

// uploadRequest tolerates the loose typing of existing clients: parentId and
// isPublic arrive as JSON strings or native values interchangeably.
type uploadRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	ParentID interface{} `json:"parentId"`
	IsPublic interface{} `json:"isPublic"`
	Data     string      `json:"data"`
}

// Upload creates a folder or stores a file. Field checks run in a fixed
// order and the first missing field names the error.
func (f *FilesController) Upload(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	var req uploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "Invalid payload")
		return
	}

	name := utils.SanitizeName(strings.TrimSpace(req.Name))
	if name == "" {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "Missing name")
		return
	}
	if !models.AcceptedType(req.Type) {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "Missing type")
		return
	}
	if req.Data == "" && req.Type != models.TypeFolder {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "Missing data")
		return
	}

	parentID, ok := coerceID(req.ParentID)
	if !ok {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "Parent not found")
		return
	}
	if parentID != models.RootParent {
		parent, err := f.docs.FileByID(ctx.Request.Context(), parentID)
		if errors.Is(err, store.ErrNotFound) {
			utils.ErrorJSON(ctx, http.StatusBadRequest, "Parent not found")
			return
		}
		if err != nil {
			utils.Internal(ctx, err)
			return
		}
		if parent.Type != models.TypeFolder {
			utils.ErrorJSON(ctx, http.StatusBadRequest, "Parent is not a folder")
			return
		}
	}

	rec := models.File{
		UserID:   userID,
		Name:     name,
		Type:     req.Type,
		ParentID: parentID,
		IsPublic: coerceBool(req.IsPublic),
	}

	if req.Type != models.TypeFolder {
		payload, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			utils.ErrorJSON(ctx, http.StatusBadRequest, "Missing data")
			return
		}
		path, err := f.blobs.Save(payload)
		if err != nil {
			utils.Internal(ctx, err)
			return
		}
		rec.LocalPath = path
	}

	if err := f.docs.CreateFile(ctx.Request.Context(), &rec); err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, rec.View())
}

// Show returns one file owned by the requester.
func (f *FilesController) Show(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	id, ok := parsePathID(ctx)
	if !ok {
		utils.NotFound(ctx)
		return
	}

	rec, err := f.docs.UserFileByID(ctx.Request.Context(), id, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rec.View())
}

// Index lists the requester's files in creation order, 20 per page,
// optionally filtered by parent folder.
func (f *FilesController) Index(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	var parentID *uint
	if q := ctx.Query("parentId"); q != "" {
		id, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			// An unparseable parent matches nothing.
			ctx.JSON(http.StatusOK, []models.FileView{})
			return
		}
		pid := uint(id)
		parentID = &pid
	}

	page := 0
	if q := ctx.Query("page"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			page = n
		}
	}

	files, err := f.docs.ListUserFiles(ctx.Request.Context(), userID, parentID, page)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	views := make([]models.FileView, 0, len(files))
	for i := range files {
		views = append(views, files[i].View())
	}
	ctx.JSON(http.StatusOK, views)
}

// Publish makes a file publicly readable.
func (f *FilesController) Publish(ctx *gin.Context) {
	f.setPublic(ctx, true)
}

// Unpublish reverts a file to owner-only visibility.
func (f *FilesController) Unpublish(ctx *gin.Context) {
	f.setPublic(ctx, false)
}

func (f *FilesController) setPublic(ctx *gin.Context, value bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	id, ok := parsePathID(ctx)
	if !ok {
		utils.NotFound(ctx)
		return
	}

	n, err := f.docs.SetFilePublic(ctx.Request.Context(), id, userID, value)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}
	if n == 0 {
		utils.NotFound(ctx)
		return
	}

	rec, err := f.docs.UserFileByID(ctx.Request.Context(), id, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rec.View())
}

// Content serves the stored bytes of a file. Private files answer the same
// 404 for "does not exist", "no token", and "not yours" so non-owners cannot
// probe for existence.
func (f *FilesController) Content(ctx *gin.Context) {
	id, ok := parsePathID(ctx)
	if !ok {
		utils.NotFound(ctx)
		return
	}

	rec, err := f.docs.FileByID(ctx.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	if rec.Type == models.TypeFolder {
		utils.ErrorJSON(ctx, http.StatusBadRequest, "A folder doesn't have content")
		return
	}

	if !rec.IsPublic {
		token := ctx.GetHeader(middleware.TokenHeader)
		if token == "" {
			utils.NotFound(ctx)
			return
		}
		requester, err := f.tokens.Resolve(ctx.Request.Context(), token)
		if errors.Is(err, store.ErrTokenNotFound) {
			utils.NotFound(ctx)
			return
		}
		if err != nil {
			utils.Internal(ctx, err)
			return
		}
		if requester != rec.UserID {
			utils.NotFound(ctx)
			return
		}
	}

	path := rec.LocalPath
	if size := ctx.Query("size"); size != "" {
		// A separator in the size could only address outside the blob dir;
		// no such rendition exists.
		if strings.ContainsAny(size, `/\`) {
			utils.NotFound(ctx)
			return
		}
		path = path + "_" + size
	}

	data, err := f.blobs.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.NotFound(ctx)
		return
	}
	if err != nil {
		utils.Internal(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, utils.ContentType(rec.Name, data), data)
}

func parsePathID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// coerceID accepts an id as a JSON string or number; absent means root.
func coerceID(v interface{}) (uint, bool) {
	switch t := v.(type) {
	case nil:
		return models.RootParent, true
	case string:
		if t == "" {
			return models.RootParent, true
		}
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	case float64:
		if t < 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint(t), true
	default:
		return 0, false
	}
}

// coerceBool accepts a bool as a JSON bool or string; absent means false.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		return false
	}
}
