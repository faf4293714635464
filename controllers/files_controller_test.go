package controllers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxzhou/filebin/models"
)

func uploadBody(fields map[string]interface{}) *strings.Reader {
	b, _ := json.Marshal(fields)
	return strings.NewReader(string(b))
}

func decodeView(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestUploadFolder(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")

	w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
		"name": "images",
		"type": "folder",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	v := decodeView(t, w.Body.Bytes())
	assert.Equal(t, "images", v["name"])
	assert.Equal(t, "folder", v["type"])
	assert.Equal(t, fmt.Sprint(user.ID), v["userId"])
	assert.Equal(t, "0", v["parentId"])
	assert.Equal(t, false, v["isPublic"])
	assert.NotContains(t, strings.ToLower(w.Body.String()), "localpath")

	rec, err := env.docs.FileByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rec.LocalPath)
}

func TestUploadFileWritesBlob(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, "bob@dylan.com")

	payload := []byte("Hello Go!")
	w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
		"name": "hello.txt",
		"type": "file",
		"data": base64.StdEncoding.EncodeToString(payload),
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	rec, err := env.docs.FileByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, rec.LocalPath)
	assert.True(t, strings.HasPrefix(rec.LocalPath, env.blobs.Root()))

	stored, err := os.ReadFile(rec.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, payload, stored)
}

func TestUploadValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, "bob@dylan.com")

	cases := []struct {
		name   string
		fields map[string]interface{}
		want   string
	}{
		{"no name", map[string]interface{}{"type": "file", "data": "aGk="}, "Missing name"},
		{"no type", map[string]interface{}{"name": "a.txt"}, "Missing type"},
		{"bad type", map[string]interface{}{"name": "a.txt", "type": "pdf", "data": "aGk="}, "Missing type"},
		{"file without data", map[string]interface{}{"name": "a.txt", "type": "file"}, "Missing data"},
		{"image without data", map[string]interface{}{"name": "a.png", "type": "image"}, "Missing data"},
		{"undecodable data", map[string]interface{}{"name": "a.txt", "type": "file", "data": "%%%"}, "Missing data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(tc.fields))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.want), w.Body.String())
		})
	}
}

func TestUploadParentChecks(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")

	// id 1: a folder; id 2: a plain file
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "docs", Type: models.TypeFolder}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "a.txt", Type: models.TypeFile, LocalPath: "x"}))

	w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
		"name": "b.txt", "type": "file", "data": "aGk=", "parentId": "999",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Parent not found"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
		"name": "b.txt", "type": "file", "data": "aGk=", "parentId": "2",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Parent is not a folder"}`, w.Body.String())

	// parentId accepted as string or number
	for _, parent := range []interface{}{"1", float64(1)} {
		w = env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
			"name": "b.txt", "type": "file", "data": "aGk=", "parentId": parent,
		}))
		require.Equal(t, http.StatusCreated, w.Code)
		v := decodeView(t, w.Body.Bytes())
		assert.Equal(t, "1", v["parentId"])
	}
}

func TestUploadRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "bogus"} {
		w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
			"name": "a.txt", "type": "file", "data": "aGk=",
		}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")
	other, _ := env.login(t, "eve@dylan.com")

	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "a.txt", Type: models.TypeFile, LocalPath: "x"}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: other.ID, Name: "b.txt", Type: models.TypeFile, LocalPath: "y"}))

	w := env.do(t, http.MethodGet, "/files/1", jsonHeaders(token), nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w.Body.Bytes())
	assert.Equal(t, "a.txt", v["name"])
	assert.Equal(t, "1", v["id"])

	// Someone else's file and a missing file are indistinguishable.
	for _, path := range []string{"/files/2", "/files/42", "/files/abc"} {
		w = env.do(t, http.MethodGet, path, jsonHeaders(token), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	}
}

func TestIndexPagination(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")
	other, _ := env.login(t, "eve@dylan.com")

	for i := 0; i < 45; i++ {
		require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{
			UserID: user.ID, Name: fmt.Sprintf("f%02d.txt", i), Type: models.TypeFile, LocalPath: "x",
		}))
	}
	// Someone else's file never shows up.
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: other.ID, Name: "z.txt", Type: models.TypeFile, LocalPath: "y"}))

	list := func(path string) []models.FileView {
		w := env.do(t, http.MethodGet, path, jsonHeaders(token), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var views []models.FileView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		return views
	}

	page0 := list("/files")
	require.Len(t, page0, 20)
	assert.Equal(t, "f00.txt", page0[0].Name)
	assert.Equal(t, "f19.txt", page0[19].Name)

	page1 := list("/files?page=1")
	require.Len(t, page1, 20)
	assert.Equal(t, "f20.txt", page1[0].Name)

	page2 := list("/files?page=2")
	require.Len(t, page2, 5)
	assert.Equal(t, "f44.txt", page2[4].Name)

	assert.Empty(t, list("/files?page=3"))
	assert.Len(t, list("/files?page=-1"), 20)
}

func TestIndexParentFilter(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")

	// id 1: folder; ids 2,3: children; id 4: root-level file
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "docs", Type: models.TypeFolder}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "a.txt", Type: models.TypeFile, ParentID: 1, LocalPath: "x"}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "b.txt", Type: models.TypeFile, ParentID: 1, LocalPath: "y"}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "c.txt", Type: models.TypeFile, LocalPath: "z"}))

	w := env.do(t, http.MethodGet, "/files?parentId=1", jsonHeaders(token), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []models.FileView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "a.txt", views[0].Name)
	assert.Equal(t, "1", views[0].ParentID)

	// parentId=0 restricts to root-level entries.
	w = env.do(t, http.MethodGet, "/files?parentId=0", jsonHeaders(token), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "docs", views[0].Name)
	assert.Equal(t, "c.txt", views[1].Name)

	// Garbage parent matches nothing rather than erroring.
	w = env.do(t, http.MethodGet, "/files?parentId=abc", jsonHeaders(token), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPublishUnpublish(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")
	_, otherToken := env.login(t, "eve@dylan.com")

	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "a.txt", Type: models.TypeFile, LocalPath: "x"}))

	w := env.do(t, http.MethodPut, "/files/1/publish", jsonHeaders(token), nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w.Body.Bytes())
	assert.Equal(t, true, v["isPublic"])

	rec, err := env.docs.FileByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, rec.IsPublic)

	w = env.do(t, http.MethodPut, "/files/1/unpublish", jsonHeaders(token), nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w.Body.Bytes())
	assert.Equal(t, false, v["isPublic"])

	// Non-owners and missing files get the same answer.
	for _, tc := range []struct{ path, tok string }{
		{"/files/1/publish", otherToken},
		{"/files/99/publish", token},
		{"/files/99/unpublish", token},
	} {
		w = env.do(t, http.MethodPut, tc.path, jsonHeaders(tc.tok), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	}
}

func TestContentVisibility(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")
	_, otherToken := env.login(t, "eve@dylan.com")

	payload := []byte("Hello Go!")
	path, err := env.blobs.Save(payload)
	require.NoError(t, err)
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{
		UserID: user.ID, Name: "hello.txt", Type: models.TypeFile, LocalPath: path,
	}))

	// Private: only the owner's token gets the bytes.
	for _, headers := range []map[string]string{nil, {"X-Token": "bogus"}, {"X-Token": otherToken}} {
		w := env.do(t, http.MethodGet, "/files/1/data", headers, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/files/1/data", map[string]string{"X-Token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	// Public: no token needed.
	_, err = env.docs.SetFilePublic(context.Background(), 1, user.ID, true)
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/files/1/data", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())

	// Back to private: the same request stops working.
	_, err = env.docs.SetFilePublic(context.Background(), 1, user.ID, false)
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/files/1/data", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentFolder(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.login(t, "bob@dylan.com")

	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "docs", Type: models.TypeFolder}))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{UserID: user.ID, Name: "pub", Type: models.TypeFolder, IsPublic: true}))

	// Folders have no content, public or not, token or not.
	for _, tc := range []struct {
		path    string
		headers map[string]string
	}{
		{"/files/1/data", map[string]string{"X-Token": token}},
		{"/files/1/data", nil},
		{"/files/2/data", nil},
	} {
		w := env.do(t, http.MethodGet, tc.path, tc.headers, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"A folder doesn't have content"}`, w.Body.String())
	}
}

func TestContentSizeVariant(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.login(t, "bob@dylan.com")

	original := []byte("full-size-bytes")
	variant := []byte("tiny")
	path, err := env.blobs.Save(original)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path+"_100", variant, 0o644))
	require.NoError(t, env.docs.CreateFile(context.Background(), &models.File{
		UserID: user.ID, Name: "pic.png", Type: models.TypeImage, IsPublic: true, LocalPath: path,
	}))

	w := env.do(t, http.MethodGet, "/files/1/data?size=100", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, variant, w.Body.Bytes())

	// A rendition nobody produced is just not there, and a size that tries
	// to walk the filesystem answers the same way even when the plain
	// rendition exists.
	for _, path := range []string{
		"/files/1/data?size=250",
		"/files/1/data?size=100%2Ffoo",
		"/files/1/data?size=100%2F..%2F..%2Fetc%2Fpasswd",
		"/files/1/data?size=100%5Cfoo",
	} {
		w = env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	}
}

func TestContentUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/files/42/data", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/files/abc/data", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadThenFetchContent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, "bob@dylan.com")

	w := env.do(t, http.MethodPost, "/files", jsonHeaders(token), uploadBody(map[string]interface{}{
		"name": "a.txt",
		"type": "file",
		"data": base64.StdEncoding.EncodeToString([]byte("hi")),
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	v := decodeView(t, w.Body.Bytes())
	assert.Equal(t, "a.txt", v["name"])
	assert.Equal(t, "file", v["type"])
	assert.Equal(t, false, v["isPublic"])
	assert.Equal(t, "0", v["parentId"])

	id := v["id"].(string)

	w = env.do(t, http.MethodGet, "/files/"+id+"/data", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/files/"+id+"/data", map[string]string{"X-Token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())
}

func TestCoerceHelpers(t *testing.T) {
	for _, tc := range []struct {
		in   interface{}
		want uint
		ok   bool
	}{
		{nil, 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"17", 17, true},
		{float64(4), 4, true},
		{"abc", 0, false},
		{float64(-1), 0, false},
		{float64(1.5), 0, false},
		{true, 0, false},
	} {
		got, ok := coerceID(tc.in)
		assert.Equal(t, tc.ok, ok, "coerceID(%v)", tc.in)
		if ok {
			assert.Equal(t, tc.want, got, "coerceID(%v)", tc.in)
		}
	}

	assert.False(t, coerceBool(nil))
	assert.True(t, coerceBool(true))
	assert.False(t, coerceBool(false))
	assert.True(t, coerceBool("true"))
	assert.False(t, coerceBool("maybe"))
}
