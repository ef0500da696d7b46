package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/qapish/qapish/internal/model"
)

// FormatUSDC renders a whole-unit USDC amount with thousands separators.
func FormatUSDC(amount uint32) string {
	digits := strconv.FormatUint(uint64(amount), 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String() + " USDC"
}

// FormatRange renders a package's price range, collapsing equal bounds.
func FormatRange(minPrice, maxPrice uint32) string {
	if minPrice == maxPrice {
		return FormatUSDC(minPrice)
	}
	return fmt.Sprintf("%s – %s", FormatUSDC(minPrice), FormatUSDC(maxPrice))
}

// FormatAvailability renders availability for listings.
func FormatAvailability(a model.Availability) string {
	switch a.Type {
	case model.AvailabilityInStock:
		return "in stock"
	case model.AvailabilityPreorder:
		return "preorder"
	case model.AvailabilityBuild:
		return fmt.Sprintf("built in %dh", a.BuildHours)
	default:
		return string(a.Type)
	}
}

// PackagesTable renders the catalog as a bordered table.
func PackagesTable(pkgs []model.Package) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers("SKU", "NAME", "GPU", "SETUP", "RANGE", "AVAILABILITY").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	for _, p := range pkgs {
		gpu := p.GPUClass.String()
		if p.GPUCount > 1 {
			gpu = fmt.Sprintf("%dx %s", p.GPUCount, gpu)
		}
		t.Row(
			p.SKU,
			p.Name,
			gpu,
			FormatUSDC(p.SetupPriceUSDC),
			FormatRange(p.MinPriceUSDC, p.MaxPriceUSDC),
			FormatAvailability(p.Availability),
		)
	}
	return t.Render()
}
