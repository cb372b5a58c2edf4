package models

import (
	"io"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

type AssetStatus int

const (
	AssetStatusPending AssetStatus = iota
	AssetStatusActive
	AssetStatusUnderReview
	AssetStatusRejected
)

func (s AssetStatus) String() string {
	switch s {
	case AssetStatusPending:
		return "pending"
	case AssetStatusActive:
		return "active"
	case AssetStatusUnderReview:
		return "under review"
	case AssetStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Seller struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AssetFile struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

type AssetUpdate struct {
	UpdateDate  string `json:"updateDate"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Asset is a purchasable digital good as returned by /Asset.
type Asset struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Price            decimal.Decimal `json:"price"`
	CreatedAt        string          `json:"createdAt"`
	LastUpdated      string          `json:"lastUpdated,omitempty"`
	Seller           Seller          `json:"seller"`
	SellerName       string          `json:"sellerName"`
	ImageURLs        []string        `json:"imageUrls"`
	PreviewURL       string          `json:"previewUrl"`
	Category         string          `json:"category"`
	SubCategory      string          `json:"subCategory"`
	DownloadCount    int             `json:"downloadCount"`
	Rating           float64         `json:"rating"`
	Tags             []string        `json:"tags"`
	Status           AssetStatus     `json:"status"`
	Version          string          `json:"version"`
	Features         []string        `json:"features"`
	Compatibilities  []string        `json:"compatibilities"`
	IncludedFiles    []AssetFile     `json:"includedFiles"`
	Documentation    string          `json:"documentation"`
	UpdateHistory    []AssetUpdate   `json:"updateHistory"`
	FileURL          string          `json:"fileUrl"`
}

// ImageURL returns the first image, or "" when the asset has none.
func (a Asset) ImageURL() string {
	if len(a.ImageURLs) == 0 {
		return ""
	}
	return a.ImageURLs[0]
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// AssetFilter selects one page of the catalog. Empty strings and nil prices
// are not sent.
type AssetFilter struct {
	Page       int
	PageSize   int
	SearchTerm string
	Category   string
	SortBy     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Values encodes the filter as /Asset query parameters.
func (f AssetFilter) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("pageSize", strconv.Itoa(f.PageSize))
	if f.SearchTerm != "" {
		v.Set("searchTerm", f.SearchTerm)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.SortBy != "" {
		v.Set("sortBy", f.SortBy)
	}
	if f.MinPrice != nil {
		v.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", f.MaxPrice.String())
	}
	return v
}

// Upload describes a new asset for POST /Asset/upload.
type Upload struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	FileName    string
	File        io.Reader
}
