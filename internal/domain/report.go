package domain

import (
	"io"
	"time"
)

// Métricas com histograma, na ordem de renderização
const (
	MetricRecency   = "recency"
	MetricMonetary  = "monetary"
	MetricFrequency = "frequency"
)

// Metrics lista as métricas renderizadas
var Metrics = []string{MetricRecency, MetricMonetary, MetricFrequency}

// RFMReport é o resultado persistido de um upload
type RFMReport struct {
	ID        string            `json:"id"`
	FileName  string            `json:"file_name"`
	RunDir    string            `json:"-"`
	Customers []RFMRow          `json:"customers"`
	Plots     map[string]string `json:"plots"`
	Stats     PipelineStats     `json:"stats"`
	CreatedAt time.Time         `json:"created_at"`
}

// Upload representa um arquivo recebido pela API
type Upload struct {
	FileName string
	Content  io.Reader
}
