package rfm

import (
	"sort"

	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// AssembleResult é a tabela RFM e quantos clientes o join descartou
type AssembleResult struct {
	Rows    []domain.RFMRow
	Dropped int
}

// Assemble faz o inner join Monetary ⋈ Frequency ⋈ Recency por CustomerID.
// Clientes ausentes de qualquer uma das tabelas ficam de fora.
func Assemble(
	monetary []domain.MonetaryRecord,
	frequency []domain.FrequencyRecord,
	recency []domain.RecencyRecord,
) (*AssembleResult, error) {
	frequencyByCustomer := make(map[string]int, len(frequency))
	for _, f := range frequency {
		frequencyByCustomer[f.CustomerID] = f.Frequency
	}
	recencyByCustomer := make(map[string]int, len(recency))
	for _, r := range recency {
		recencyByCustomer[r.CustomerID] = r.Recency
	}

	seen := make(map[string]struct{}, len(monetary))
	result := &AssembleResult{Rows: make([]domain.RFMRow, 0, len(monetary))}

	for _, m := range monetary {
		seen[m.CustomerID] = struct{}{}
		freq, ok := frequencyByCustomer[m.CustomerID]
		if !ok {
			continue
		}
		rec, ok := recencyByCustomer[m.CustomerID]
		if !ok {
			continue
		}
		result.Rows = append(result.Rows, domain.RFMRow{
			CustomerID: m.CustomerID,
			Amount:     m.Amount,
			Frequency:  freq,
			Recency:    rec,
		})
	}

	for id := range frequencyByCustomer {
		seen[id] = struct{}{}
	}
	for id := range recencyByCustomer {
		seen[id] = struct{}{}
	}
	result.Dropped = len(seen) - len(result.Rows)

	if len(result.Rows) == 0 {
		return result, newError(KindJoin, nil, "%d customers, none in all three tables", len(seen))
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].CustomerID < result.Rows[j].CustomerID
	})
	return result, nil
}
