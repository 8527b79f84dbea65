package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/shopspring/decimal"
)

// FormatPrice renders a stored price as currency.
func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}

// RenderPDF writes the printable public menu of a restaurant to w.
func (c *PublicMenuComposer) RenderPDF(ctx context.Context, restaurantID uint64, w io.Writer) error {
	menu, err := c.Compose(ctx, restaurantID)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(menu.Restaurant.Name, true)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, tr(menu.Restaurant.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 7, tr(menu.Restaurant.Cuisine), "", 1, "C", false, 0, "")
	if menu.Restaurant.Description != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(menu.Restaurant.Description), "", "C", false)
	}
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  |  %s  |  %s",
		menu.Restaurant.Address, menu.Restaurant.Phone, menu.Restaurant.Email)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(menu.Sections) == 0 {
		pdf.SetFont("Arial", "I", 12)
		pdf.CellFormat(0, 10, "Menu coming soon", "", 1, "C", false, 0, "")
	}

	for _, section := range menu.Sections {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 10, tr(section.Section.Name), "B", 1, "L", false, 0, "")
		if section.Section.Description != nil {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 5, tr(*section.Section.Description), "", "L", false)
		}
		pdf.Ln(2)

		for _, item := range section.Items {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(150, 7, tr(item.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, FormatPrice(item.Price), "", 1, "R", false, 0, "")

			pdf.SetFont("Arial", "", 10)
			if item.Description != "" {
				pdf.MultiCell(150, 5, tr(item.Description), "", "L", false)
			}
			if len(item.Dietary) > 0 {
				pdf.SetFont("Arial", "I", 9)
				pdf.CellFormat(0, 5, tr(strings.Join(item.Dietary.Strings(), ", ")), "", 1, "L", false, 0, "")
			}
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 6, menu.ShareURL, "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return types.Backend("public.RenderPDF", fmt.Errorf("render pdf: %w", err))
	}
	return nil
}
