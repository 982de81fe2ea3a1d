package domain

import "github.com/shopspring/decimal"

type MonetaryRecord struct {
	CustomerID string
	Amount     decimal.Decimal
}

type FrequencyRecord struct {
	CustomerID string
	Frequency  int
}

type RecencyRecord struct {
	CustomerID string
	Recency    int // Dias inteiros até a data máxima do arquivo
}

// RFMRow é a linha final por cliente, entregue ao renderizador de histogramas
type RFMRow struct {
	CustomerID string          `json:"CustomerID"`
	Amount     decimal.Decimal `json:"Amount"`
	Frequency  int             `json:"Frequency"`
	Recency    int             `json:"Recency"`
}

// PipelineStats resume o que foi descartado em cada etapa
type PipelineStats struct {
	LoadedRows             int `json:"loaded_rows"`
	DroppedRows            int `json:"dropped_rows"`
	CleanedRows            int `json:"cleaned_rows"`
	UnparsedDates          int `json:"unparsed_dates"`
	Customers              int `json:"customers"`
	CustomersDroppedByJoin int `json:"customers_dropped_by_join"`
}
