// Package e2e exercises the full HTTP surface of the catalog service
// in-process: the real router, handlers, service and file ingestion over the
// in-memory store, behind an httptest.Server.
package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocatalog/catalog/internal/app"
	"github.com/gocatalog/catalog/internal/catalog"
	"github.com/gocatalog/catalog/internal/catalog/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsURL = "/api/v1/products"

type testEnv struct {
	server     *httptest.Server
	uploadsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	uploadsDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := app.SetupDependencies(store.NewInMemoryStore(), uploadsDir, logger)
	server := httptest.NewServer(app.SetupHttpHandler(deps))
	t.Cleanup(server.Close)
	return &testEnv{server: server, uploadsDir: uploadsDir}
}

func (e *testEnv) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) catalog.Product {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var p catalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, writer.WriteField(key, val))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func uploadsIn(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func Test_CreateProduct(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, productsURL, `{"name":"Mouse","price":9.99,"category":{"name":"Peripherals"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var created catalog.Product
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEmpty(t, created.ID)
	require.NotNil(t, created.CreatedAt)
	assert.NotContains(t, string(raw), `"photo"`)
	assert.Equal(t, productsURL+"/"+created.ID, resp.Header.Get("Location"))
}

func Test_CreateProduct_ValidationErrorsAggregated(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, productsURL, `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()

	var messages []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	assert.Equal(t, []string{
		"Field name must not be empty",
		"Field price must not be empty",
	}, messages)
}

func Test_EditPreservesPhotoAndCreatedAt(t *testing.T) {
	env := newTestEnv(t)

	created := decodeProduct(t, env.postJSON(t, productsURL,
		`{"name":"Mouse","price":9.99,"category":{"name":"Peripherals"}}`))

	// Attach a photo so the merge has something to preserve.
	body, contentType := multipartBody(t, nil, "mouse.png", "image")
	withPhoto := decodeProduct(t, env.do(t, http.MethodPost, productsURL+"/"+created.ID+"/photo", body, contentType))
	require.NotEmpty(t, withPhoto.Photo)

	resp := env.do(t, http.MethodPut, productsURL+"/"+created.ID,
		strings.NewReader(`{"name":"Mouse 2","price":12.5,"category":{"name":"Peripherals"},"photo":"spoofed.png","createdAt":"2001-01-01T00:00:00Z"}`),
		"application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	updated := decodeProduct(t, resp)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Mouse 2", updated.Name)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, withPhoto.Photo, updated.Photo, "edit must not touch the photo field")
	require.NotNil(t, updated.CreatedAt)
	assert.True(t, created.CreatedAt.Equal(*updated.CreatedAt), "edit must not recompute createdAt")
}

func Test_EditMissingProduct(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, productsURL+"/does-not-exist",
		strings.NewReader(`{"name":"X","price":1}`), "application/json")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_DeleteThenGet(t *testing.T) {
	env := newTestEnv(t)

	created := decodeProduct(t, env.postJSON(t, productsURL,
		`{"name":"Apple iPod","price":120,"category":{"name":"Electronics"}}`))

	resp := env.do(t, http.MethodDelete, productsURL+"/"+created.ID, nil, "")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(env.server.URL + productsURL + "/" + created.ID)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_UploadPhotoToMissingProductWritesNoFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, nil, "logo.png", "image")
	resp := env.do(t, http.MethodPost, productsURL+"/does-not-exist/photo", body, contentType)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, uploadsIn(t, env.uploadsDir))
}

func Test_CreateWithPhotoAndFetchStoredFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":          "Camera",
		"price":         "250.00",
		"category.id":   "c1",
		"category.name": "Electronics",
	}, "shot 1.png", "raw-bytes")
	resp := env.do(t, http.MethodPost, productsURL, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeProduct(t, resp)

	assert.Equal(t, "Camera", created.Name)
	assert.Equal(t, 250.00, created.Price)
	assert.Equal(t, catalog.Category{ID: "c1", Name: "Electronics"}, created.Category)
	assert.True(t, strings.HasSuffix(created.Photo, "-shot1.png"), "spaces are stripped from the stored name")
	require.NotNil(t, created.CreatedAt)

	// The stored file is written under the uploads dir and served back by its
	// exact stored name.
	content, err := os.ReadFile(filepath.Join(env.uploadsDir, created.Photo))
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(content))

	fetched, err := http.Get(env.server.URL + "/uploads/" + created.Photo)
	require.NoError(t, err)
	defer func() { _ = fetched.Body.Close() }()
	require.Equal(t, http.StatusOK, fetched.StatusCode)
	served, err := io.ReadAll(fetched.Body)
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(served))
}

func Test_TwoUploadsSameNameKeepDistinctFiles(t *testing.T) {
	env := newTestEnv(t)

	first := decodeProduct(t, env.postJSON(t, productsURL, `{"name":"A","price":1,"category":{"name":"X"}}`))
	second := decodeProduct(t, env.postJSON(t, productsURL, `{"name":"B","price":2,"category":{"name":"X"}}`))

	body1, ct1 := multipartBody(t, nil, "photo.png", "one")
	withPhoto1 := decodeProduct(t, env.do(t, http.MethodPost, productsURL+"/"+first.ID+"/photo", body1, ct1))
	body2, ct2 := multipartBody(t, nil, "photo.png", "two")
	withPhoto2 := decodeProduct(t, env.do(t, http.MethodPost, productsURL+"/"+second.ID+"/photo", body2, ct2))

	assert.NotEqual(t, withPhoto1.Photo, withPhoto2.Photo)
	assert.Len(t, uploadsIn(t, env.uploadsDir), 2)
}

func Test_ListStreamsProductsInInsertionOrder(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"first", "second", "third"} {
		resp := env.postJSON(t, productsURL, `{"name":"`+name+`","price":1,"category":{"name":"X"}}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := http.Get(env.server.URL + productsURL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []catalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
	assert.Equal(t, "third", list[2].Name)
}

func Test_CategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/categories", `{"name":"Electronics"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()

	var created catalog.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	fetched, err := http.Get(env.server.URL + "/api/v1/categories/" + created.ID)
	require.NoError(t, err)
	defer func() { _ = fetched.Body.Close() }()
	assert.Equal(t, http.StatusOK, fetched.StatusCode)
}
