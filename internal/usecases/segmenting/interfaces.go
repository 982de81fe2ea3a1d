package segmenting

import (
	"context"
	"io"

	"github.com/vfg2006/rfm-segmentation-api/infrastructure/storage"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_segmenter.go -package=mocks

// Segmenter é o caso de uso exposto pela API
type Segmenter interface {
	// Analyze grava o upload, roda o pipeline, desenha os histogramas e persiste o relatório
	Analyze(ctx context.Context, upload domain.Upload) (*domain.RFMReport, error)

	// GetReport busca um relatório já processado
	GetReport(ctx context.Context, id string) (*domain.RFMReport, error)

	// PlotFile devolve o caminho em disco do PNG de uma métrica
	PlotFile(ctx context.Context, id, metric string) (string, error)
}

// Analyzer executa o pipeline RFM sobre um arquivo
type Analyzer interface {
	Run(ctx context.Context, path string) (*rfm.Result, error)
}

// UploadStorage guarda os arquivos de cada execução
type UploadStorage interface {
	NewRun() (*storage.Run, error)
	RunDir(id string) string
	Save(run *storage.Run, fileName string, content io.Reader) (string, error)
	Remove(dir string) error
}
