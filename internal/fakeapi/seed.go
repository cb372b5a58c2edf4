package fakeapi

import (
	"fmt"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/shopspring/decimal"
)

// Seed fills s with a small demo catalog, a buyer and a seller. Both accounts
// use the password "password".
func Seed(s *Server) error {
	for _, u := range []struct{ name, email, role string }{
		{"demo", "demo@dokan.load", "Buyer"},
		{"studio", "studio@dokan.load", "Seller"},
	} {
		if err := s.AddUser(u.name, u.email, "password", u.role); err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	cats := []struct{ name, desc string }{
		{"3D Models", "Meshes and rigged characters"},
		{"Textures", "PBR materials and tiling textures"},
		{"Audio", "Music loops and sound effects"},
		{"Scripts", "Gameplay and tooling code"},
	}
	for _, c := range cats {
		s.AddCategory(c.name, c.desc)
	}

	seller := models.Seller{ID: 1, Name: "studio"}
	for i := 1; i <= 24; i++ {
		cat := cats[i%len(cats)].name
		s.AddAsset(models.Asset{
			Name:             fmt.Sprintf("%s pack %02d", cat, i),
			Description:      fmt.Sprintf("Hand-made %s, volume %d.", cat, i),
			ShortDescription: cat,
			Price:            decimal.NewFromInt(int64(i)).Add(decimal.RequireFromString("0.99")),
			Category:         cat,
			Seller:           seller,
			SellerName:       seller.Name,
			ImageURLs:        []string{fmt.Sprintf("/images/asset-%02d.png", i)},
			Version:          "1.0.0",
			Rating:           3.5 + float64(i%3)/2,
		}, []byte(fmt.Sprintf("asset %d payload\n", i)))
	}
	return nil
}
