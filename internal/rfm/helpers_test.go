package rfm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

const header = "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func row(customer, date string, qty int64, price string) domain.TransactionRow {
	return domain.TransactionRow{
		InvoiceNo:   "536365",
		CustomerID:  customer,
		InvoiceDate: date,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "amount: want %s, got %s", want, got)
}
