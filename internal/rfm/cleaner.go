package rfm

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// Marcadores tratados como valor ausente, além da célula vazia. A comparação
// é exata: " " ou "na" são valores.
var naMarkers = map[string]struct{}{
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

func isMissing(v string) bool {
	if v == "" {
		return true
	}
	_, ok := naMarkers[v]
	return ok
}

// CleanResult guarda as linhas válidas e quantas foram descartadas
type CleanResult struct {
	Rows    []domain.TransactionRow
	Dropped int
}

// Clean descarta toda linha com alguma célula ausente e normaliza o CustomerID.
// A política é tudo ou nada por linha: nenhuma linha é reparada.
func Clean(table *domain.Table) (*CleanResult, error) {
	var (
		invoiceIdx  = table.ColumnIndex(domain.ColumnInvoiceNo)
		customerIdx = table.ColumnIndex(domain.ColumnCustomerID)
		dateIdx     = table.ColumnIndex(domain.ColumnInvoiceDate)
		quantityIdx = table.ColumnIndex(domain.ColumnQuantity)
		priceIdx    = table.ColumnIndex(domain.ColumnUnitPrice)
	)
	if invoiceIdx < 0 || customerIdx < 0 || dateIdx < 0 || quantityIdx < 0 || priceIdx < 0 {
		return nil, newError(KindCleaning, nil, "table has no %s columns", strings.Join(domain.RequiredColumns, "/"))
	}

	result := &CleanResult{Rows: make([]domain.TransactionRow, 0, len(table.Rows))}

rows:
	for _, row := range table.Rows {
		for _, v := range row.Values {
			if isMissing(v) {
				result.Dropped++
				continue rows
			}
		}

		quantity, err := parseQuantity(row.Values[quantityIdx])
		if err != nil {
			return nil, newError(KindCleaning, err, "line %d", row.Line)
		}
		price, err := parseUnitPrice(row.Values[priceIdx])
		if err != nil {
			return nil, newError(KindCleaning, err, "line %d", row.Line)
		}

		result.Rows = append(result.Rows, domain.TransactionRow{
			InvoiceNo:   strings.TrimSpace(row.Values[invoiceIdx]),
			CustomerID:  NormalizeCustomerID(row.Values[customerIdx]),
			InvoiceDate: strings.TrimSpace(row.Values[dateIdx]),
			Quantity:    quantity,
			UnitPrice:   price,
		})
	}

	if len(result.Rows) == 0 {
		return nil, newError(KindCleaning, nil, "%d of %d rows had missing values", result.Dropped, len(table.Rows))
	}

	return result, nil
}

// NormalizeCustomerID devolve a forma canônica do identificador:
// números inteiros perdem a parte decimal ("17850.0" -> "17850"),
// o resto é mantido como texto.
func NormalizeCustomerID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return raw
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}

func parseQuantity(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "quantity %q", v)
	}
	if f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return 0, errors.Errorf("quantity %q is not an integer", v)
	}
	return int64(f), nil
}

func parseUnitPrice(v string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "unit price %q", v)
	}
	return price, nil
}
