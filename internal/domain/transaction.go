// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import "github.com/shopspring/decimal"

// Colunas obrigatórias do arquivo de transações
const (
	ColumnInvoiceNo   = "InvoiceNo"
	ColumnCustomerID  = "CustomerID"
	ColumnInvoiceDate = "InvoiceDate"
	ColumnQuantity    = "Quantity"
	ColumnUnitPrice   = "UnitPrice"
)

// RequiredColumns lista as colunas sem as quais o pipeline não roda
var RequiredColumns = []string{
	ColumnInvoiceNo,
	ColumnCustomerID,
	ColumnInvoiceDate,
	ColumnQuantity,
	ColumnUnitPrice,
}

// Table é o arquivo carregado em memória, com todas as colunas do cabeçalho
type Table struct {
	Columns []string
	Rows    []TableRow
}

// TableRow é uma linha crua do arquivo. Line é o número da linha no arquivo (cabeçalho = 1)
type TableRow struct {
	Line   int
	Values []string
}

// ColumnIndex retorna a posição da coluna no cabeçalho ou -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// TransactionRow é um item de nota já limpo
type TransactionRow struct {
	InvoiceNo   string
	CustomerID  string
	InvoiceDate string
	Quantity    int64
	UnitPrice   decimal.Decimal
}
