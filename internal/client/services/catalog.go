package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

// Catalog serves the single-resource catalog calls: asset detail, the
// category list and seller uploads.
type Catalog struct {
	api     client.Client
	session Session
	log     logging.Logger

	mu         sync.Mutex
	categories []models.Category
}

func NewCatalog(api client.Client, session Session, log logging.Logger) *Catalog {
	return &Catalog{api: api, session: session, log: log.With("component", "catalog")}
}

// Asset returns one asset; an unknown id is client.ErrNotFound.
func (c *Catalog) Asset(ctx context.Context, id int64) (*models.Asset, error) {
	a, err := c.api.GetAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get asset %d: %w", id, err)
	}
	return a, nil
}

// Categories returns the category list, fetched once and then cached.
func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	c.mu.Lock()
	cached := c.categories
	c.mu.Unlock()
	if cached != nil {
		return append([]models.Category(nil), cached...), nil
	}

	cats, err := c.api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}

	c.mu.Lock()
	c.categories = cats
	c.mu.Unlock()
	return append([]models.Category(nil), cats...), nil
}

// Upload publishes a new asset. It requires a logged-in user; whether that
// user may sell is for the server to decide.
func (c *Catalog) Upload(ctx context.Context, up models.Upload) (*models.Asset, error) {
	u, err := c.session.RequireUser()
	if err != nil {
		return nil, err
	}

	a, err := c.api.UploadAsset(ctx, up)
	if err != nil {
		c.log.Warn(ctx, "upload failed", "name", up.Name, "error", err)
		return nil, fmt.Errorf("upload asset: %w", err)
	}
	c.log.Info(ctx, "asset uploaded", "asset", a.ID, "seller", u.ID)
	return a, nil
}
