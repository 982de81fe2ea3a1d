package rfm

import "github.com/vfg2006/rfm-segmentation-api/internal/domain"

// Frequency conta as linhas de cada cliente (itens, não notas distintas)
func Frequency(rows []domain.TransactionRow) []domain.FrequencyRecord {
	countByCustomer := make(map[string]int)
	for _, row := range rows {
		countByCustomer[row.CustomerID]++
	}

	records := make([]domain.FrequencyRecord, 0, len(countByCustomer))
	for _, id := range sortedKeys(countByCustomer) {
		records = append(records, domain.FrequencyRecord{
			CustomerID: id,
			Frequency:  countByCustomer[id],
		})
	}
	return records
}
