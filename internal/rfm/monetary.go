package rfm

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// Monetary soma Quantity × UnitPrice por cliente. Devoluções (Quantity < 0)
// entram com sinal, então o total pode ser negativo.
func Monetary(rows []domain.TransactionRow) []domain.MonetaryRecord {
	amountByCustomer := make(map[string]decimal.Decimal)
	for _, row := range rows {
		amount := row.UnitPrice.Mul(decimal.NewFromInt(row.Quantity))
		amountByCustomer[row.CustomerID] = amountByCustomer[row.CustomerID].Add(amount)
	}

	records := make([]domain.MonetaryRecord, 0, len(amountByCustomer))
	for _, id := range sortedKeys(amountByCustomer) {
		records = append(records, domain.MonetaryRecord{
			CustomerID: id,
			Amount:     amountByCustomer[id],
		})
	}
	return records
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
