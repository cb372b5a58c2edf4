package fakeapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type env struct {
	t *testing.T
	s *Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := New(Options{Secret: []byte("test")})
	require.NoError(t, Seed(s))
	return &env{t: t, s: s}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.s.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *env) login(email, password string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	require.NotEmpty(t, e.login("demo@dokan.load", "password"))

	rec := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "demo@dokan.load", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid email or password", decode[map[string]string](t, rec)["message"])
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	body := map[string]string{"Username": "tank", "Email": "Tank@Zion.io", "Password": "secret1", "Role": "Seller"}
	rec := e.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	token := e.login("tank@zion.io", "secret1")
	rec = e.do(http.MethodGet, "/api/User/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[models.Profile](t, rec)
	require.Equal(t, "tank", p.Username)
	require.Equal(t, "Seller", p.Role)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{"Email": "not-an-email", "Password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Errors, "Username")
	require.Contains(t, body.Errors, "Email")
	require.Contains(t, body.Errors, "Password")
}

func TestProtectedRoutes(t *testing.T) {
	e := newEnv(t)

	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/User/profile", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/User/profile", "garbage", nil).Code)

	token := e.login("demo@dokan.load", "password")
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/User/profile", token, nil).Code)

	e.s.Revoke(token)
	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/User/profile", token, nil).Code)
}

func TestListAssets(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/Asset?page=3&pageSize=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.Page[models.Asset]](t, rec)
	require.Equal(t, 24, page.TotalCount)
	require.Equal(t, 3, page.Page)
	require.Len(t, page.Items, 4)

	rec = e.do(http.MethodGet, "/api/Asset?category=audio&sortBy=price_desc&pageSize=50", "", nil)
	page = decode[models.Page[models.Asset]](t, rec)
	require.Equal(t, 6, page.TotalCount)
	for i := 1; i < len(page.Items); i++ {
		require.True(t, page.Items[i-1].Price.GreaterThanOrEqual(page.Items[i].Price))
		require.Equal(t, "Audio", page.Items[i].Category)
	}

	rec = e.do(http.MethodGet, "/api/Asset?minPrice=20&maxPrice=22.99&pageSize=50", "", nil)
	page = decode[models.Page[models.Asset]](t, rec)
	require.Equal(t, 3, page.TotalCount)

	rec = e.do(http.MethodGet, "/api/Asset?searchTerm=VOLUME%2012", "", nil)
	page = decode[models.Page[models.Asset]](t, rec)
	require.Equal(t, 1, page.TotalCount)

	rec = e.do(http.MethodGet, "/api/Asset?page=99", "", nil)
	page = decode[models.Page[models.Asset]](t, rec)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
}

func TestGetAsset(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/Asset/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), decode[models.Asset](t, rec).ID)

	require.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/Asset/999", "", nil).Code)
	require.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/Asset/abc", "", nil).Code)
}

func TestPurchaseAndDownload(t *testing.T) {
	e := newEnv(t)
	token := e.login("demo@dokan.load", "password")

	require.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/Asset/2/download", token, nil).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/Asset/2/purchase", token, nil).Code)
	require.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/Asset/2/purchase", token, nil).Code)

	rec := e.do(http.MethodGet, "/api/Asset/2/download", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "asset 2 payload\n", rec.Body.String())

	require.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/Asset/999/purchase", token, nil).Code)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	cats := decode[[]models.Category](t, e.do(http.MethodGet, "/api/Category", "", nil))
	require.Len(t, cats, 4)
	require.Equal(t, "3D Models", cats[0].Name)
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		w, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	token := e.login("demo@dokan.load", "password")

	rec := httptest.NewRecorder()
	e.s.Handler().ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/api/User/profile", token,
		map[string]string{"username": "demo2", "bio": "hello"}, "file", "me.png", "PNG"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Profile](t, rec)
	require.Equal(t, "demo2", p.Username)
	require.True(t, strings.HasSuffix(p.AvatarURL, "-me.png"))

	rec = httptest.NewRecorder()
	e.s.Handler().ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/api/User/profile", token,
		map[string]string{"username": ""}, "", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAsset(t *testing.T) {
	e := newEnv(t)
	token := e.login("studio@dokan.load", "password")

	rec := httptest.NewRecorder()
	e.s.Handler().ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/Asset/upload", token,
		map[string]string{"name": "Forest", "price": "4.50", "category": "Textures"}, "file", "forest.zip", "ZIPDATA"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decode[models.Asset](t, rec)
	require.Equal(t, int64(25), a.ID)
	require.True(t, decimal.RequireFromString("4.5").Equal(a.Price))
	require.Equal(t, "studio", a.SellerName)

	dl := e.do(http.MethodGet, "/api/Asset/25/download", token, nil)
	require.Equal(t, http.StatusOK, dl.Code)
	require.Equal(t, "ZIPDATA", dl.Body.String())

	rec = httptest.NewRecorder()
	e.s.Handler().ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/Asset/upload", token,
		map[string]string{"name": "NoFile", "price": "1"}, "", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
