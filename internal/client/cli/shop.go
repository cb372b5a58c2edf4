package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/dokanload/internal/client/cart"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/dmitrijs2005/dokanload/internal/client/services"
	"github.com/dmitrijs2005/dokanload/internal/filex"
)

// parseFilter reads "assets" arguments: an optional bare page number and
// key=value pairs.
func parseFilter(args []string) (models.AssetFilter, error) {
	f := models.AssetFilter{Page: 1}
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return f, errUsage
			}
			f.Page = n
			continue
		}
		key = strings.ToLower(key)
		switch key {
		case "page":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return f, errUsage
			}
			f.Page = n
		case "search", "q":
			f.SearchTerm = val
		case "category", "cat":
			f.Category = val
		case "sort":
			f.SortBy = val
		case "min", "max":
			d, err := decimal.NewFromString(val)
			if err != nil {
				return f, errUsage
			}
			if key == "min" {
				f.MinPrice = &d
			} else {
				f.MaxPrice = &d
			}
		default:
			return f, errUsage
		}
	}
	return f, nil
}

func parseID(args []string, want int) (int64, error) {
	if len(args) < 1 || len(args) > want {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, errUsage
	}
	return id, nil
}

func (a *App) listAssets(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	st, err := a.assets.Fetch(ctx, f)
	if err != nil {
		return err
	}
	a.printPage(st)
	return nil
}

func (a *App) nextPage(ctx context.Context, args []string) error {
	st, moved, err := a.assets.NextPage(ctx)
	if err != nil {
		return err
	}
	if !moved {
		a.println("Already on the last page.")
		return nil
	}
	a.printPage(st)
	return nil
}

func (a *App) prevPage(ctx context.Context, args []string) error {
	st, moved, err := a.assets.PrevPage(ctx)
	if err != nil {
		return err
	}
	if !moved {
		a.println("Already on the first page.")
		return nil
	}
	a.printPage(st)
	return nil
}

func (a *App) printPage(st services.AssetQueryState) {
	if len(st.Items) == 0 {
		a.println("No assets found.")
		return
	}
	for _, it := range st.Items {
		a.printf("%5d  %-32s %10s  %s\n", it.ID, it.Name, it.Price.StringFixed(2), it.Category)
	}
	p := st.Pagination
	a.printf("Page %d of %d (%d assets)", p.Page, p.TotalPages, p.TotalCount)
	switch {
	case p.HasNextPage && p.HasPreviousPage:
		a.println(" - 'prev' / 'next'")
	case p.HasNextPage:
		a.println(" - 'next' for more")
	case p.HasPreviousPage:
		a.println(" - 'prev' to go back")
	default:
		a.println()
	}
}

func (a *App) showAsset(ctx context.Context, args []string) error {
	id, err := parseID(args, 1)
	if err != nil {
		return err
	}
	it, err := a.catalog.Asset(ctx, id)
	if err != nil {
		return err
	}

	a.printf("#%d %s\n", it.ID, it.Name)
	a.printf("  price:    %s\n", it.Price.StringFixed(2))
	a.printf("  category: %s\n", it.Category)
	if seller := it.SellerName; seller != "" {
		a.printf("  seller:   %s\n", seller)
	} else if it.Seller.Name != "" {
		a.printf("  seller:   %s\n", it.Seller.Name)
	}
	if it.Version != "" {
		a.printf("  version:  %s\n", it.Version)
	}
	if len(it.Tags) > 0 {
		a.printf("  tags:     %s\n", strings.Join(it.Tags, ", "))
	}
	for _, f := range it.IncludedFiles {
		a.printf("  file:     %s (%d bytes)\n", f.FileName, f.FileSize)
	}
	if it.Description != "" {
		a.println()
		a.println(it.Description)
	}
	return nil
}

func (a *App) listCategories(ctx context.Context, args []string) error {
	cats, err := a.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		a.println("No categories.")
		return nil
	}
	for _, c := range cats {
		if c.Description != "" {
			a.printf("  %-16s %s\n", c.Name, c.Description)
		} else {
			a.printf("  %s\n", c.Name)
		}
	}
	return nil
}

func (a *App) purchase(ctx context.Context, args []string) error {
	id, err := parseID(args, 1)
	if err != nil {
		return err
	}
	if err := a.assets.Purchase(ctx, id); err != nil {
		return err
	}
	a.cart.RemoveItem(strconv.FormatInt(id, 10))
	a.printf("Asset %d purchased. Use 'download %d' to get it.\n", id, id)
	return nil
}

func (a *App) download(ctx context.Context, args []string) error {
	id, err := parseID(args, 2)
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 2 {
		name = args[1]
	} else if it, err := a.catalog.Asset(ctx, id); err == nil && len(it.IncludedFiles) > 0 {
		name = it.IncludedFiles[0].FileName
	}

	dir, err := filex.EnsureDir(downloadDir)
	if err != nil {
		return err
	}
	f, path, err := filex.CreateIn(dir, name, fmt.Sprintf("asset-%d.bin", id))
	if err != nil {
		return err
	}

	n, err := a.assets.Download(ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	a.printf("Saved %d bytes to %s\n", n, path)
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	name, err := GetSimpleText(a.reader, "-Asset name", a.out)
	if err != nil {
		return err
	}
	desc, err := GetMultiline(a.reader, "-Description", a.out)
	if err != nil {
		return err
	}
	priceText, err := GetSimpleText(a.reader, "-Price", a.out)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return fmt.Errorf("invalid price %q", priceText)
	}
	category, err := GetSimpleText(a.reader, "-Category", a.out)
	if err != nil {
		return err
	}
	path, err := GetSimpleText(a.reader, "-File path", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	it, err := a.catalog.Upload(ctx, models.Upload{
		Name:        name,
		Description: desc,
		Price:       price,
		Category:    category,
		FileName:    filepath.Base(path),
		File:        f,
	})
	if err != nil {
		return err
	}
	a.printf("Uploaded asset #%d %s\n", it.ID, it.Name)
	return nil
}

func (a *App) showCart(ctx context.Context, args []string) error {
	snap := a.cart.Snapshot()
	if len(snap.Lines) == 0 {
		a.println("Your cart is empty.")
		return nil
	}
	for _, l := range snap.Lines {
		a.printf("%5s  %-32s %3d x %8s = %10s\n", l.ID, l.Name, l.Quantity, l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	a.printf("%d items, total %s\n", snap.Count(), snap.Total().StringFixed(2))
	return nil
}

func (a *App) addToCart(ctx context.Context, args []string) error {
	id, err := parseID(args, 2)
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			return errUsage
		}
	}

	it, err := a.catalog.Asset(ctx, id)
	if err != nil {
		return err
	}
	err = a.cart.AddItem(cart.Item{
		ID:          strconv.FormatInt(it.ID, 10),
		Name:        it.Name,
		Description: it.ShortDescription,
		Price:       it.Price,
		ImageURL:    it.ImageURL(),
		Category:    it.Category,
	}, qty)
	if err != nil {
		return err
	}
	a.printf("Added %s to the cart (%d items).\n", it.Name, a.cart.Count())
	return nil
}

func (a *App) removeFromCart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	a.cart.RemoveItem(args[0])
	a.printf("Cart: %d items.\n", a.cart.Count())
	return nil
}

func (a *App) clearCart(ctx context.Context, args []string) error {
	a.cart.Clear()
	a.println("Cart cleared.")
	return nil
}
