package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/tealeg/xlsx"
)

const catalogSheet = "Perfumes"

var catalogColumns = []string{
	"ID", "Name", "Brand", "Price", "Category", "Description", "Image",
	"IsNew", "IsOnSale", "Discount", "Stock", "IsFeatured", "CreatedAt", "UpdatedAt",
}

// ExportXLSX writes the whole catalog as a spreadsheet, one product per row.
func (s *CatalogService) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(catalogSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range catalogColumns {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Brand)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(strconv.FormatBool(p.IsNew))
		row.AddCell().SetValue(strconv.FormatBool(p.IsOnSale))
		row.AddCell().SetValue(p.Discount)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(strconv.FormatBool(p.IsFeatured))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportXLSX upserts products from a sheet laid out like ExportXLSX output.
// Rows that do not parse or validate are skipped.
func (s *CatalogService) ImportXLSX(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, invalid("failed to parse spreadsheet: %v", err)
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		return nil, invalid("spreadsheet is empty or missing header row")
	}

	sheet := xlFile.Sheets[0]
	result := &ImportResult{}
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 12 {
			result.Skipped++
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		p, err := parseProductRow(get)
		if err != nil {
			slog.Warn("skipping catalog row", "row", i+1, "error", err)
			result.Skipped++
			continue
		}

		if p.ID != "" {
			existing, err := s.repo.FindByID(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				p.CreatedAt = existing.CreatedAt
				p.UpdatedAt = s.now().UTC()
				if err := s.repo.Save(ctx, &p); err != nil {
					return nil, err
				}
				s.invalidate(ctx, p.ID)
				result.Updated++
				continue
			}
		}
		if _, err := s.Create(ctx, p); err != nil {
			if IsValidation(err) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Created++
	}
	slog.Info("catalog imported", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func parseProductRow(get func(int) string) (domain.Product, error) {
	price, err := strconv.ParseInt(get(3), 10, 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}
	discount, _ := strconv.Atoi(get(9))
	stock, _ := strconv.Atoi(get(10))
	isNew, _ := strconv.ParseBool(get(7))
	isOnSale, _ := strconv.ParseBool(get(8))
	isFeatured, _ := strconv.ParseBool(get(11))

	p := domain.Product{
		ID:          get(0),
		Name:        get(1),
		Brand:       get(2),
		Price:       price,
		Category:    get(4),
		Description: get(5),
		Image:       get(6),
		IsNew:       isNew,
		IsOnSale:    isOnSale,
		Discount:    discount,
		Stock:       stock,
		IsFeatured:  isFeatured,
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}
