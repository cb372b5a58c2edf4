package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client. The *Fn hooks, when set, take
// precedence over the canned results.
type fakeClient struct {
	mu sync.Mutex

	LoginToken string
	LoginErr   error
	LoginFn    func(ctx context.Context, email, password string) (string, error)

	RegisterErr error

	Profile    *models.Profile
	ProfileErr error
	ProfileFn  func(ctx context.Context) (*models.Profile, error)

	UpdateRet *models.Profile
	UpdateErr error

	ListFn func(ctx context.Context, f models.AssetFilter) (*models.Page[models.Asset], error)

	AssetRet *models.Asset
	AssetErr error

	UploadRet *models.Asset
	UploadErr error

	PurchaseErr error
	PurchaseFn  func(ctx context.Context, id int64) error

	DownloadData string
	DownloadErr  error

	CategoriesRet []models.Category
	CategoriesErr error

	LastLoginEmail string
	LastRegister   client.RegisterRequest
	LastUpdate     models.ProfileUpdate
	LastFilter     models.AssetFilter
	LastPurchase   int64
	LastUpload     models.Upload
	ProfileCalls   int
	CategoryCalls  int
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	f.LastLoginEmail = email
	fn, tok, err := f.LoginFn, f.LoginToken, f.LoginErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password)
	}
	return tok, err
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	f.ProfileCalls++
	fn, p, err := f.ProfileFn, f.Profile, f.ProfileErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &models.Profile{}, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUpdate = upd
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeClient) ListAssets(ctx context.Context, filter models.AssetFilter) (*models.Page[models.Asset], error) {
	f.mu.Lock()
	f.LastFilter = filter
	fn := f.ListFn
	f.mu.Unlock()
	return fn(ctx, filter)
}

func (f *fakeClient) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	return f.AssetRet, f.AssetErr
}

func (f *fakeClient) UploadAsset(ctx context.Context, up models.Upload) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUpload = up
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) PurchaseAsset(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.LastPurchase = id
	fn, err := f.PurchaseFn, f.PurchaseErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return err
}

func (f *fakeClient) DownloadAsset(ctx context.Context, id int64, w io.Writer) (int64, error) {
	if f.DownloadErr != nil {
		return 0, f.DownloadErr
	}
	return io.Copy(w, strings.NewReader(f.DownloadData))
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CategoryCalls++
	return f.CategoriesRet, f.CategoriesErr
}

// fakeStore implements credentials.Store in memory.
type fakeStore struct {
	mu       sync.Mutex
	token    string
	ReadErr  error
	SaveErr  error
	ClearErr error
	Clears   int
}

func (s *fakeStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.ReadErr
}

func (s *fakeStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	return nil
}

func (s *fakeStore) stored() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func signToken(t *testing.T, id, email string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID:   id,
		Email:    email,
		Username: strings.Split(email, "@")[0],
		Role:     "Buyer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}
