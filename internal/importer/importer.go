package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

type VariantWriter interface {
	Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error)
}

// CSVImporter reads commercetools-like product exports and upserts one
// purchasable variant per row carrying a SKU.
type CSVImporter struct {
	reader    *csv.Reader
	variants  VariantWriter
	projectID string
	logger    zerolog.Logger
}

func NewCSVImporter(r io.Reader, repo VariantWriter, projectID string, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:    csvr,
		variants:  repo,
		projectID: projectID,
		logger:    logger,
	}
}

type product struct {
	ID   string
	Key  string
	Name string
}

type csvRow struct {
	product
	SKU      string
	Title    string
	Cents    string
	Currency string
}

// Run parses CSV rows and upserts variants. Rows without a product key
// continue the product started by the previous keyed row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["variants.sku"]; !ok {
		return 0, errors.New("missing variants.sku column")
	}

	var (
		current  *product
		imported int
		line     = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row.Key != "" {
			p := row.product
			current = &p
		}
		if row.SKU == "" {
			continue
		}
		if current == nil {
			return imported, fmt.Errorf("line %d: variant %q has no product", line, row.SKU)
		}

		v, err := i.variant(*current, row)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.variants.Upsert(ctx, v); err != nil {
			return imported, fmt.Errorf("upsert variant %q: %w", v.SKU, err)
		}
		imported++
	}

	i.logger.Info().Str("project_id", i.projectID).Int("variants", imported).Msg("import finished")
	return imported, nil
}

func (i *CSVImporter) variant(p product, row csvRow) (domain.ProductVariant, error) {
	if row.Cents == "" || row.Currency == "" {
		return domain.ProductVariant{}, fmt.Errorf("variant %q missing price", row.SKU)
	}
	cents, err := decimal.NewFromString(row.Cents)
	if err != nil || cents.IsNegative() || !cents.IsInteger() {
		return domain.ProductVariant{}, fmt.Errorf("variant %q has invalid centAmount %q", row.SKU, row.Cents)
	}
	if len(row.Currency) != 3 {
		return domain.ProductVariant{}, fmt.Errorf("variant %q has invalid currency %q", row.SKU, row.Currency)
	}

	productID := p.ID
	if productID == "" {
		productID = p.Key
	}
	title := row.Title
	if title == "" {
		title = p.Name
	}
	if title == "" {
		title = row.SKU
	}
	return domain.ProductVariant{
		ProjectID: i.projectID,
		ProductID: productID,
		SKU:       row.SKU,
		Title:     title,
		Price:     cents.Shift(-2),
		Currency:  strings.ToUpper(row.Currency),
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) csvRow {
	return csvRow{
		product: product{
			ID:   pick(record, index, "id"),
			Key:  pick(record, index, "key"),
			Name: pick(record, index, "name.en"),
		},
		SKU:      pick(record, index, "variants.sku"),
		Title:    pick(record, index, "variants.name.en"),
		Cents:    pick(record, index, "variants.prices.value.centAmount"),
		Currency: pick(record, index, "variants.prices.value.currencyCode"),
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
