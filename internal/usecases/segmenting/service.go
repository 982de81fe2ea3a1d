package segmenting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/plot"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/storage"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
	"github.com/vfg2006/rfm-segmentation-api/pkg/apiErrors"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

var pipelineCodes = map[rfm.Kind]string{
	rfm.KindLoad:     apiErrors.ErrRFMLoad,
	rfm.KindCleaning: apiErrors.ErrRFMCleaning,
	rfm.KindRecency:  apiErrors.ErrRFMRecency,
	rfm.KindJoin:     apiErrors.ErrRFMJoin,
}

type Service struct {
	analyzer    Analyzer
	storage     UploadStorage
	renderer    plot.Renderer
	repository  repository.ReportRepository
	allowedExts []string
	now         func() time.Time
}

func NewService(
	analyzer Analyzer,
	uploadStorage UploadStorage,
	renderer plot.Renderer,
	reportRepository repository.ReportRepository,
	allowedExts []string,
) *Service {
	return &Service{
		analyzer:    analyzer,
		storage:     uploadStorage,
		renderer:    renderer,
		repository:  reportRepository,
		allowedExts: normalizeExts(allowedExts),
		now:         time.Now,
	}
}

func (s *Service) Analyze(ctx context.Context, upload domain.Upload) (*domain.RFMReport, error) {
	logger := log.ForContext(ctx)

	fileName := storage.SanitizeFileName(upload.FileName)
	if fileName == "" || upload.Content == nil {
		return nil, NewSegmentError(ErrFileRequired, apiErrors.ErrMissingRequiredData, "Nenhum arquivo enviado")
	}
	if !s.allowedExt(fileName) {
		return nil, NewSegmentError(ErrInvalidFileType, apiErrors.ErrInvalidFormat,
			fmt.Sprintf("Extensão não permitida para %s, use %s", fileName, strings.Join(s.allowedExts, ", ")))
	}

	run, err := s.storage.NewRun()
	if err != nil {
		return nil, NewSegmentErrorWithCause(ErrStorage, apiErrors.ErrStorage, "", "Falha ao criar diretório da execução", err)
	}
	logger = logger.WithField("report_id", run.ID)

	path, err := s.storage.Save(run, fileName, upload.Content)
	if err != nil {
		s.discard(ctx, run)
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, NewSegmentErrorWithCause(ErrFileTooLarge, apiErrors.ErrFileTooLarge, run.ID, "Arquivo acima do limite", err)
		}
		return nil, NewSegmentErrorWithCause(ErrStorage, apiErrors.ErrStorage, run.ID, "Falha ao gravar o arquivo enviado", err)
	}

	result, err := s.analyzer.Run(ctx, path)
	if err != nil {
		s.discard(ctx, run)
		code, ok := pipelineCodes[rfm.KindOf(err)]
		if !ok {
			code = apiErrors.ErrInternalServer
		}
		logger.WithError(err).Warn("Pipeline RFM falhou")
		return nil, NewSegmentErrorWithCause(ErrPipeline, code, run.ID, fileName, err)
	}

	plots, err := s.renderer.Render(result.Rows, run.Dir, run.PublicDir)
	if err != nil {
		s.discard(ctx, run)
		return nil, NewSegmentErrorWithCause(ErrRender, apiErrors.ErrRender, run.ID, "Falha ao gerar histogramas", err)
	}

	report := &domain.RFMReport{
		ID:        run.ID,
		FileName:  fileName,
		RunDir:    run.Dir,
		Customers: result.Rows,
		Plots:     plots,
		Stats:     result.Stats,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repository.Save(ctx, report); err != nil {
		s.discard(ctx, run)
		return nil, NewSegmentErrorWithCause(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, run.ID, "Falha ao salvar relatório", err)
	}

	logger.WithFields(log.Fields{
		"customers":    report.Stats.Customers,
		"dropped_rows": report.Stats.DroppedRows,
	}).Info("Relatório RFM gerado")

	return report, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*domain.RFMReport, error) {
	if id == "" {
		return nil, NewSegmentError(ErrReportNotFound, apiErrors.ErrMissingRequiredData, "ID do relatório é obrigatório")
	}

	report, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, NewSegmentErrorWithCause(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, "Falha ao buscar relatório", err)
	}
	if report == nil {
		return nil, &SegmentError{Err: ErrReportNotFound, Code: apiErrors.ErrNotFound, ReportID: id, Details: id}
	}

	return report, nil
}

func (s *Service) PlotFile(ctx context.Context, id, metric string) (string, error) {
	fileName, ok := plot.FileName(metric)
	if !ok {
		return "", NewSegmentError(ErrUnknownMetric, apiErrors.ErrInvalidRequest,
			fmt.Sprintf("Métrica %q inválida, use %s", metric, strings.Join(domain.Metrics, ", ")))
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return "", err
	}

	dir := report.RunDir
	if dir == "" {
		dir = s.storage.RunDir(report.ID)
	}

	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", NewSegmentErrorWithCause(ErrPlotNotFound, apiErrors.ErrNotFound, id, metric, err)
	}

	return path, nil
}

// discard remove os arquivos de uma execução que não gerou relatório
func (s *Service) discard(ctx context.Context, run *storage.Run) {
	if err := s.storage.Remove(run.Dir); err != nil {
		log.ForContext(ctx).WithError(err).WithField("report_id", run.ID).Warn("Falha ao remover diretório da execução")
	}
}

func (s *Service) allowedExt(fileName string) bool {
	if len(s.allowedExts) == 0 {
		return true
	}
	return slices.Contains(s.allowedExts, strings.ToLower(filepath.Ext(fileName)))
}

func normalizeExts(exts []string) []string {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
