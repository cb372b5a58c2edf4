package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

const fetchErrorPrefix = "Failed to fetch assets: "

// AssetQueryState is a snapshot of one listing.
type AssetQueryState struct {
	Items      []models.Asset
	Pagination models.Pagination
	Filter     models.AssetFilter
	Loading    bool
	Error      string
}

// AssetQuery owns the result of "page N of the filtered catalog" for one
// listing. A failed fetch keeps the previous items and pagination and only
// sets Error. Overlapping fetches are fenced: only the most recently issued
// one may update the state.
type AssetQuery struct {
	api      client.Client
	log      logging.Logger
	pageSize int

	mu       sync.Mutex
	gen      uint64
	fetching bool
	oneShot  int
	items    []models.Asset
	page     models.Pagination
	filter   models.AssetFilter
	errMsg   string
}

func NewAssetQuery(api client.Client, log logging.Logger, pageSize int) *AssetQuery {
	if pageSize < 1 {
		pageSize = 10
	}
	return &AssetQuery{
		api:      api,
		log:      log.With("component", "assets"),
		pageSize: pageSize,
		page:     models.NewPagination(1, pageSize, 0),
		filter:   models.AssetFilter{Page: 1, PageSize: pageSize},
	}
}

func (q *AssetQuery) State() AssetQueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return AssetQueryState{
		Items:      append([]models.Asset(nil), q.items...),
		Pagination: q.page,
		Filter:     q.filter,
		Loading:    q.fetching || q.oneShot > 0,
		Error:      q.errMsg,
	}
}

// Fetch loads the page described by filter. Page and PageSize below 1 are
// replaced by 1 and the configured page size. When a newer Fetch was issued
// while this one was in flight, its result is dropped and ErrSuperseded is
// returned.
func (q *AssetQuery) Fetch(ctx context.Context, filter models.AssetFilter) (AssetQueryState, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = q.pageSize
	}

	q.mu.Lock()
	q.gen++
	gen := q.gen
	q.fetching = true
	q.errMsg = ""
	q.mu.Unlock()

	page, err := q.api.ListAssets(ctx, filter)

	q.mu.Lock()
	if gen != q.gen {
		q.mu.Unlock()
		q.log.Debug(ctx, "discarding stale page", "page", filter.Page)
		return q.State(), ErrSuperseded
	}
	q.fetching = false
	if err != nil {
		q.errMsg = fetchErrorPrefix + client.Message(err)
		q.mu.Unlock()
		q.log.Warn(ctx, "fetch assets failed", "page", filter.Page, "error", err)
		return q.State(), fmt.Errorf("fetch assets: %w", err)
	}

	// The request is authoritative for page and size; a response that
	// omits them must not zero the derived metadata.
	if page.Page < 1 {
		page.Page = filter.Page
	}
	if page.PageSize < 1 {
		page.PageSize = filter.PageSize
	}
	q.items = page.Items
	q.page = page.Pagination()
	q.filter = filter
	q.mu.Unlock()

	return q.State(), nil
}

// NextPage fetches the page after the current one with the same filter.
// It returns false without fetching when there is no next page.
func (q *AssetQuery) NextPage(ctx context.Context) (AssetQueryState, bool, error) {
	q.mu.Lock()
	p, f := q.page, q.filter
	q.mu.Unlock()

	if !p.HasNextPage {
		return q.State(), false, nil
	}
	f.Page = p.Page + 1
	st, err := q.Fetch(ctx, f)
	return st, true, err
}

// PrevPage is NextPage in the other direction.
func (q *AssetQuery) PrevPage(ctx context.Context) (AssetQueryState, bool, error) {
	q.mu.Lock()
	p, f := q.page, q.filter
	q.mu.Unlock()

	if !p.HasPreviousPage {
		return q.State(), false, nil
	}
	f.Page = p.Page - 1
	st, err := q.Fetch(ctx, f)
	return st, true, err
}

func (q *AssetQuery) startOneShot() func() {
	q.mu.Lock()
	q.oneShot++
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		q.oneShot--
		q.mu.Unlock()
	}
}

// Purchase buys asset id. Failures are returned and never touch the items.
func (q *AssetQuery) Purchase(ctx context.Context, id int64) error {
	defer q.startOneShot()()

	if err := q.api.PurchaseAsset(ctx, id); err != nil {
		q.log.Warn(ctx, "purchase failed", "asset", id, "error", err)
		return fmt.Errorf("purchase asset %d: %w", id, err)
	}
	q.log.Info(ctx, "asset purchased", "asset", id)
	return nil
}

// Download streams the payload of asset id into w and returns the number of
// bytes written.
func (q *AssetQuery) Download(ctx context.Context, id int64, w io.Writer) (int64, error) {
	defer q.startOneShot()()

	n, err := q.api.DownloadAsset(ctx, id, w)
	if err != nil {
		q.log.Warn(ctx, "download failed", "asset", id, "bytes", n, "error", err)
		return n, fmt.Errorf("download asset %d: %w", id, err)
	}
	q.log.Info(ctx, "asset downloaded", "asset", id, "bytes", n)
	return n, nil
}
