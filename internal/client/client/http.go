package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
)

// HTTPClient implements Client over a Gateway.
type HTTPClient struct {
	gw *Gateway
}

func NewHTTPClient(gw *Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	var resp struct {
		Token string `json:"token"`
	}
	err = c.gw.Do(ctx, Request{
		Method: http.MethodPost, Path: "/auth/login",
		Body: body, ContentType: "application/json", Anonymous: true,
	}, func(r *http.Response) error { return decodeJSON(r, &resp) })
	if err != nil {
		return "", asCredentialsError(err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}
	return resp.Token, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	body, err := jsonBody(req)
	if err != nil {
		return err
	}

	err = c.gw.Do(ctx, Request{
		Method: http.MethodPost, Path: "/auth/register",
		Body: body, ContentType: "application/json", Anonymous: true,
	}, nil)
	if err != nil {
		return asCredentialsError(err)
	}
	return nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "/User/profile"},
		func(r *http.Response) error { return decodeJSON(r, &p) })
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	form := newMultipartForm().
		field("username", upd.Username).
		field("bio", upd.Bio)
	if upd.Avatar != nil {
		form.file("file", upd.AvatarName, upd.Avatar)
	}
	body, contentType := form.stream()

	var p models.Profile
	err := c.gw.Do(ctx, Request{
		Method: http.MethodPut, Path: "/User/profile",
		Body: body, ContentType: contentType, Transfer: upd.Avatar != nil,
	}, func(r *http.Response) error { return decodeJSON(r, &p) })
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListAssets(ctx context.Context, filter models.AssetFilter) (*models.Page[models.Asset], error) {
	var page models.Page[models.Asset]
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "/Asset", Query: filter.Values()},
		func(r *http.Response) error { return decodeJSON(r, &page) })
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func assetPath(id int64, suffix string) string {
	return "/Asset/" + strconv.FormatInt(id, 10) + suffix
}

func (c *HTTPClient) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	var a models.Asset
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: assetPath(id, "")},
		func(r *http.Response) error { return decodeJSON(r, &a) })
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) UploadAsset(ctx context.Context, upload models.Upload) (*models.Asset, error) {
	form := newMultipartForm().
		field("name", upload.Name).
		field("description", upload.Description).
		field("price", upload.Price.String()).
		field("category", upload.Category)
	if upload.File != nil {
		form.file("file", upload.FileName, upload.File)
	}
	body, contentType := form.stream()

	var a models.Asset
	err := c.gw.Do(ctx, Request{
		Method: http.MethodPost, Path: "/Asset/upload",
		Body: body, ContentType: contentType, Transfer: true,
	}, func(r *http.Response) error { return decodeJSON(r, &a) })
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) PurchaseAsset(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, Request{Method: http.MethodPost, Path: assetPath(id, "/purchase")}, nil)
}

func (c *HTTPClient) DownloadAsset(ctx context.Context, id int64, w io.Writer) (int64, error) {
	var n int64
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: assetPath(id, "/download"), Transfer: true},
		func(r *http.Response) error {
			var err error
			n, err = io.Copy(w, r.Body)
			return err
		})
	return n, err
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "/Category"},
		func(r *http.Response) error { return decodeJSON(r, &cats) })
	if err != nil {
		return nil, err
	}
	return cats, nil
}

type formPart struct {
	name     string
	value    string
	fileName string
	file     io.Reader
}

// multipartForm streams its parts through a pipe so files are never held
// in memory whole.
type multipartForm struct {
	parts []formPart
}

func newMultipartForm() *multipartForm { return &multipartForm{} }

func (f *multipartForm) field(name, value string) *multipartForm {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

func (f *multipartForm) file(name, fileName string, r io.Reader) *multipartForm {
	if fileName == "" {
		fileName = name
	}
	f.parts = append(f.parts, formPart{name: name, fileName: fileName, file: r})
	return f
}

func (f *multipartForm) stream() (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(f.write(mw))
	}()
	return pr, mw.FormDataContentType()
}

func (f *multipartForm) write(mw *multipart.Writer) error {
	for _, p := range f.parts {
		if p.file == nil {
			if err := mw.WriteField(p.name, p.value); err != nil {
				return err
			}
			continue
		}
		w, err := mw.CreateFormFile(p.name, p.fileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, p.file); err != nil {
			return err
		}
	}
	return mw.Close()
}
