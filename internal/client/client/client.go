package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"Username"`
	Email    string `json:"Email"`
	Password string `json:"Password"`
	Role     string `json:"Role"`
}

// Client is the Remote API contract.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req RegisterRequest) error
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error)
	ListAssets(ctx context.Context, filter models.AssetFilter) (*models.Page[models.Asset], error)
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
	UploadAsset(ctx context.Context, upload models.Upload) (*models.Asset, error)
	PurchaseAsset(ctx context.Context, id int64) error
	DownloadAsset(ctx context.Context, id int64, w io.Writer) (int64, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}
