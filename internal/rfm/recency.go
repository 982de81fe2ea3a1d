package rfm

import (
	"math"
	"time"

	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// DefaultDateLayout equivale a dia/mês/ano hora:minuto, com ou sem zero à esquerda
const DefaultDateLayout = "2/1/2006 15:04"

const day = 24 * time.Hour

// Faixa de datas representável em nanossegundos desde 1970; fora dela a
// diferença entre datas satura e a data conta como não reconhecida.
var (
	minDate = time.Unix(0, math.MinInt64).UTC()
	maxDate = time.Unix(0, math.MaxInt64).UTC()
)

func dateInRange(t time.Time) bool {
	return !t.Before(minDate) && !t.After(maxDate)
}

// RecencyResult traz os registros e o que ficou de fora da conta
type RecencyResult struct {
	Records  []domain.RecencyRecord
	MaxDate  time.Time
	Unparsed int
}

// Recency calcula, por cliente, os dias inteiros entre a maior data do
// arquivo inteiro e a compra mais recente do cliente. Datas que não batem
// com o layout, ou fora de 1677-09-21..2262-04-11, são ignoradas e contadas
// em Unparsed.
func Recency(rows []domain.TransactionRow, layout string) (*RecencyResult, error) {
	if layout == "" {
		layout = DefaultDateLayout
	}

	result := &RecencyResult{}
	parsed := make([]time.Time, len(rows))
	valid := make([]bool, len(rows))

	for i, row := range rows {
		t, err := time.Parse(layout, row.InvoiceDate)
		if err != nil || !dateInRange(t) {
			result.Unparsed++
			continue
		}
		parsed[i], valid[i] = t, true
		if t.After(result.MaxDate) || result.MaxDate.IsZero() {
			result.MaxDate = t
		}
	}

	if result.Unparsed == len(rows) {
		return nil, newError(KindRecency, nil, "%d dates did not match layout %q", result.Unparsed, layout)
	}

	minDiffByCustomer := make(map[string]time.Duration)
	for i, row := range rows {
		if !valid[i] {
			continue
		}
		diff := result.MaxDate.Sub(parsed[i])
		if current, ok := minDiffByCustomer[row.CustomerID]; !ok || diff < current {
			minDiffByCustomer[row.CustomerID] = diff
		}
	}

	result.Records = make([]domain.RecencyRecord, 0, len(minDiffByCustomer))
	for _, id := range sortedKeys(minDiffByCustomer) {
		result.Records = append(result.Records, domain.RecencyRecord{
			CustomerID: id,
			Recency:    int(minDiffByCustomer[id] / day),
		})
	}
	return result, nil
}
