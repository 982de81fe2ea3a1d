package rfm

import (
	"context"
	"io"
	"time"

	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

// Etapas reportadas em OnStage
const (
	StageLoad      = "load"
	StageClean     = "clean"
	StageMonetary  = "monetary"
	StageFrequency = "frequency"
	StageRecency   = "recency"
	StageAssemble  = "assemble"
)

// Stages lista as etapas na ordem de execução
var Stages = []string{StageLoad, StageClean, StageMonetary, StageFrequency, StageRecency, StageAssemble}

// Result é a tabela RFM de uma execução
type Result struct {
	Rows    []domain.RFMRow
	Stats   domain.PipelineStats
	MaxDate time.Time
}

// Pipeline encadeia Load -> Clean -> {Monetary, Frequency, Recency} -> Assemble.
// Não guarda estado entre execuções.
type Pipeline struct {
	DateLayout string
	OnStage    func(stage string) // Chamado ao fim de cada etapa (opcional)
}

// NewPipeline cria um pipeline com o layout de data informado
func NewPipeline(dateLayout string) *Pipeline {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Pipeline{DateLayout: dateLayout}
}

// Run executa o pipeline sobre o arquivo em path
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	table, err := Load(path)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, table)
}

// RunReader executa o pipeline sobre um conteúdo já aberto
func (p *Pipeline) RunReader(ctx context.Context, r io.Reader) (*Result, error) {
	table, err := Read(r)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, table)
}

func (p *Pipeline) run(ctx context.Context, table *domain.Table) (*Result, error) {
	logger := log.ForContext(ctx)
	p.stageDone(StageLoad)

	cleaned, err := Clean(table)
	if err != nil {
		return nil, err
	}
	if cleaned.Dropped > 0 {
		logger.WithFields(log.Fields{
			"dropped_rows": cleaned.Dropped,
			"loaded_rows":  len(table.Rows),
		}).Warnf("rfm: %d linhas descartadas por valores ausentes", cleaned.Dropped)
	}
	p.stageDone(StageClean)

	monetary := Monetary(cleaned.Rows)
	p.stageDone(StageMonetary)

	frequency := Frequency(cleaned.Rows)
	p.stageDone(StageFrequency)

	recency, err := Recency(cleaned.Rows, p.DateLayout)
	if err != nil {
		return nil, err
	}
	if recency.Unparsed > 0 {
		logger.WithFields(log.Fields{
			"unparsed_dates": recency.Unparsed,
			"layout":         p.DateLayout,
		}).Warnf("rfm: %d datas de nota não reconhecidas foram ignoradas", recency.Unparsed)
	}
	p.stageDone(StageRecency)

	assembled, err := Assemble(monetary, frequency, recency.Records)
	if err != nil {
		return nil, err
	}
	if assembled.Dropped > 0 {
		logger.WithField("customers_dropped_by_join", assembled.Dropped).
			Warnf("rfm: %d clientes sem data válida ficaram fora da tabela", assembled.Dropped)
	}
	p.stageDone(StageAssemble)

	result := &Result{
		Rows:    assembled.Rows,
		MaxDate: recency.MaxDate,
		Stats: domain.PipelineStats{
			LoadedRows:             len(table.Rows),
			DroppedRows:            cleaned.Dropped,
			CleanedRows:            len(cleaned.Rows),
			UnparsedDates:          recency.Unparsed,
			Customers:              len(assembled.Rows),
			CustomersDroppedByJoin: assembled.Dropped,
		},
	}

	logger.WithFields(log.Fields{
		"customers": result.Stats.Customers,
		"max_date":  result.MaxDate.Format(time.DateTime),
	}).Info("rfm: tabela RFM montada")

	return result, nil
}

func (p *Pipeline) stageDone(stage string) {
	if p.OnStage != nil {
		p.OnStage(stage)
	}
}
