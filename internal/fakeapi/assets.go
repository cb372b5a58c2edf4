package fakeapi

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxUpload = 32 << 20

// AddCategory registers a category for GET /Category.
func (s *Server) AddCategory(name, description string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Category{ID: int64(len(s.categories) + 1), Name: name, Description: description}
	s.categories = append(s.categories, c)
	return c
}

// AddAsset lists a as active with the given downloadable payload and
// returns it with its assigned id.
func (s *Server) AddAsset(a models.Asset, payload []byte) models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	a.Status = models.AssetStatusActive
	a.FileURL = s.prefix + "/Asset/" + strconv.FormatInt(a.ID, 10) + "/download"
	s.assets = append(s.assets, &asset{Asset: a, payload: append([]byte(nil), payload...)})
	return a
}

func (s *Server) findAsset(c echo.Context) (*asset, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid asset id")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, "Asset not found")
}

func intParam(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &d, nil
}

func (s *Server) listAssets(c echo.Context) error {
	page := intParam(c, "page", 1)
	pageSize := intParam(c, "pageSize", 10)
	term := strings.ToLower(c.QueryParam("searchTerm"))
	category := c.QueryParam("category")

	minPrice, err := decimalParam(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := decimalParam(c, "maxPrice")
	if err != nil {
		return err
	}

	s.mu.RLock()
	var matched []models.Asset
	for _, a := range s.assets {
		if term != "" && !strings.Contains(strings.ToLower(a.Name+" "+a.Description), term) {
			continue
		}
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if minPrice != nil && a.Price.LessThan(*minPrice) {
			continue
		}
		if maxPrice != nil && a.Price.GreaterThan(*maxPrice) {
			continue
		}
		matched = append(matched, a.Asset)
	}
	s.mu.RUnlock()

	sortAssets(matched, c.QueryParam("sortBy"))

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	items := matched[start:end]
	if items == nil {
		items = []models.Asset{}
	}

	return c.JSON(http.StatusOK, models.Page[models.Asset]{
		Items:      items,
		TotalCount: len(matched),
		Page:       page,
		PageSize:   pageSize,
	})
}

func sortAssets(items []models.Asset, by string) {
	var less func(a, b models.Asset) bool
	switch strings.ToLower(by) {
	case "price", "price_asc":
		less = func(a, b models.Asset) bool { return a.Price.LessThan(b.Price) }
	case "price_desc":
		less = func(a, b models.Asset) bool { return a.Price.GreaterThan(b.Price) }
	case "name":
		less = func(a, b models.Asset) bool { return a.Name < b.Name }
	case "newest":
		less = func(a, b models.Asset) bool { return a.ID > b.ID }
	case "popular":
		less = func(a, b models.Asset) bool { return a.DownloadCount > b.DownloadCount }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func (s *Server) getAsset(c echo.Context) error {
	a, err := s.findAsset(c)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(http.StatusOK, a.Asset)
}

func (s *Server) listCategories(c echo.Context) error {
	s.mu.RLock()
	cats := append([]models.Category{}, s.categories...)
	s.mu.RUnlock()
	return c.JSON(http.StatusOK, cats)
}

func (s *Server) uploadAsset(c echo.Context) error {
	u := currentUser(c)

	fields := map[string][]string{}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		fields["Name"] = []string{"The Name field is required."}
	}
	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil || price.IsNegative() {
		fields["Price"] = []string{"The Price must be a non-negative number."}
	}

	var payload []byte
	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		fields["File"] = []string{"The File field is required."}
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	case fh.Size > maxUpload:
		fields["File"] = []string{"The File is too large."}
	default:
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		payload, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
	}
	if len(fields) > 0 {
		return validationError(c, fields)
	}

	s.mu.RLock()
	seller := models.Seller{Name: u.Username}
	s.mu.RUnlock()

	a := s.AddAsset(models.Asset{
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		Category:    c.FormValue("category"),
		Seller:      seller,
		SellerName:  seller.Name,
		IncludedFiles: []models.AssetFile{{
			FileName: fh.Filename,
			FileType: fh.Header.Get("Content-Type"),
			FileSize: int64(len(payload)),
		}},
	}, payload)

	s.mu.Lock()
	s.ownLocked(u.ID, a.ID)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, a)
}

func (s *Server) ownLocked(userID string, assetID int64) {
	owned := s.purchases[userID]
	if owned == nil {
		owned = map[int64]bool{}
		s.purchases[userID] = owned
	}
	owned[assetID] = true
}

func (s *Server) purchase(c echo.Context) error {
	a, err := s.findAsset(c)
	if err != nil {
		return err
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.purchases[u.ID][a.ID] {
		return echo.NewHTTPError(http.StatusConflict, "Asset already purchased")
	}
	s.ownLocked(u.ID, a.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Purchase successful"})
}

func (s *Server) download(c echo.Context) error {
	a, err := s.findAsset(c)
	if err != nil {
		return err
	}
	u := currentUser(c)

	s.mu.Lock()
	owned := s.purchases[u.ID][a.ID]
	if owned {
		a.DownloadCount++
	}
	payload := a.payload
	s.mu.Unlock()

	if !owned {
		return echo.NewHTTPError(http.StatusForbidden, "Purchase the asset before downloading it")
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, payload)
}
