package segmenting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	plotmocks "github.com/vfg2006/rfm-segmentation-api/infrastructure/plot/mocks"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository/mocks"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/storage"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
	segmocks "github.com/vfg2006/rfm-segmentation-api/internal/usecases/segmenting/mocks"
	"github.com/vfg2006/rfm-segmentation-api/pkg/apiErrors"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
	"go.uber.org/mock/gomock"
)

const retailCSV = "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
	"1,A,x,2,01/01/2024 10:00,5.00,C1,UK\n" +
	"2,B,y,1,05/01/2024 12:00,10.00,C1,UK\n" +
	"3,C,z,3,03/01/2024 09:00,2.50,C2,UK\n"

func init() {
	log.SetupTestLogger()
}

type fixture struct {
	service  *Service
	renderer *plotmocks.MockRenderer
	repo     *mocks.MockReportRepository
	baseDir  string
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	baseDir := t.TempDir()
	renderer := plotmocks.NewMockRenderer(ctrl)
	repo := mocks.NewMockReportRepository(ctrl)

	service := NewService(
		rfm.NewPipeline(rfm.DefaultDateLayout),
		storage.NewUploadStore(baseDir, "uploads", 1<<20),
		renderer,
		repo,
		[]string{"csv"},
	)
	service.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	return &fixture{service: service, renderer: renderer, repo: repo, baseDir: baseDir}
}

func runDirs(t *testing.T, baseDir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	return entries
}

func TestService_Analyze(t *testing.T) {
	f := newFixture(t)

	f.renderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(rows []domain.RFMRow, outputDir, publicDir string) (map[string]string, error) {
			assert.Len(t, rows, 2)
			assert.True(t, strings.HasPrefix(outputDir, f.baseDir))
			assert.True(t, strings.HasPrefix(publicDir, "uploads/"))
			return map[string]string{domain.MetricRecency: publicDir + "/recency_plot.png"}, nil
		})

	var saved *domain.RFMReport
	f.repo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report *domain.RFMReport) error {
			saved = report
			return nil
		})

	report, err := f.service.Analyze(context.Background(), domain.Upload{
		FileName: "../../retail.CSV",
		Content:  strings.NewReader(retailCSV),
	})
	require.NoError(t, err)

	assert.Same(t, saved, report)
	assert.Equal(t, "retail.CSV", report.FileName)
	assert.Equal(t, 2, report.Stats.Customers)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), report.CreatedAt)
	require.Len(t, report.Customers, 2)
	assert.Equal(t, "C1", report.Customers[0].CustomerID)
	assert.Equal(t, 0, report.Customers[0].Recency)
	assert.Equal(t, 2, report.Customers[1].Recency)

	_, err = os.Stat(filepath.Join(report.RunDir, "retail.CSV"))
	assert.NoError(t, err)
}

func TestService_Analyze_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		upload   domain.Upload
		wantErr  error
		wantCode string
	}{
		{
			name:     "sem arquivo",
			upload:   domain.Upload{},
			wantErr:  ErrFileRequired,
			wantCode: apiErrors.ErrMissingRequiredData,
		},
		{
			name:     "extensão inválida",
			upload:   domain.Upload{FileName: "retail.xlsx", Content: strings.NewReader(retailCSV)},
			wantErr:  ErrInvalidFileType,
			wantCode: apiErrors.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.Analyze(context.Background(), tt.upload)

			var segErr *SegmentError
			require.ErrorAs(t, err, &segErr)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, segErr.Code)
			assert.Empty(t, runDirs(t, f.baseDir))
		})
	}
}

func TestService_Analyze_PipelineErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  error
		wantCode string
	}{
		{
			name:     "colunas ausentes",
			content:  "InvoiceNo,Quantity\n1,2\n",
			wantErr:  rfm.ErrLoad,
			wantCode: apiErrors.ErrRFMLoad,
		},
		{
			name: "nenhuma linha completa",
			content: "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
				"1,A,x,2,01/01/2024 10:00,5.00,,UK\n",
			wantErr:  rfm.ErrCleaning,
			wantCode: apiErrors.ErrRFMCleaning,
		},
		{
			name: "nenhuma data reconhecida",
			content: "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
				"1,A,x,2,ontem,5.00,C1,UK\n",
			wantErr:  rfm.ErrRecency,
			wantCode: apiErrors.ErrRFMRecency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.Analyze(context.Background(), domain.Upload{
				FileName: "retail.csv",
				Content:  strings.NewReader(tt.content),
			})

			var segErr *SegmentError
			require.ErrorAs(t, err, &segErr)
			assert.ErrorIs(t, err, ErrPipeline)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, segErr.Code)
			assert.NotEmpty(t, segErr.ReportID)
			assert.Empty(t, runDirs(t, f.baseDir), "diretório da execução deve ser removido")
		})
	}
}

func TestService_Analyze_RenderAndSaveErrors(t *testing.T) {
	t.Run("falha no histograma", func(t *testing.T) {
		f := newFixture(t)
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

		_, err := f.service.Analyze(context.Background(), domain.Upload{FileName: "retail.csv", Content: strings.NewReader(retailCSV)})

		var segErr *SegmentError
		require.ErrorAs(t, err, &segErr)
		assert.ErrorIs(t, err, ErrRender)
		assert.Equal(t, apiErrors.ErrRender, segErr.Code)
		assert.Empty(t, runDirs(t, f.baseDir))
	})

	t.Run("falha ao salvar", func(t *testing.T) {
		f := newFixture(t)
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)
		f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		_, err := f.service.Analyze(context.Background(), domain.Upload{FileName: "retail.csv", Content: strings.NewReader(retailCSV)})

		var segErr *SegmentError
		require.ErrorAs(t, err, &segErr)
		assert.ErrorIs(t, err, ErrDatabaseOperation)
		assert.Equal(t, apiErrors.ErrDatabaseOperation, segErr.Code)
		assert.Empty(t, runDirs(t, f.baseDir))
	})
}

func TestService_Analyze_FileTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	baseDir := t.TempDir()

	service := NewService(
		rfm.NewPipeline(""),
		storage.NewUploadStore(baseDir, "uploads", 16),
		plotmocks.NewMockRenderer(ctrl),
		mocks.NewMockReportRepository(ctrl),
		[]string{".csv"},
	)

	_, err := service.Analyze(context.Background(), domain.Upload{FileName: "retail.csv", Content: strings.NewReader(retailCSV)})

	var segErr *SegmentError
	require.ErrorAs(t, err, &segErr)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, apiErrors.ErrFileTooLarge, segErr.Code)
	assert.Empty(t, runDirs(t, baseDir))
}

func TestService_GetReport(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetByID(gomock.Any(), "abc").Return(&domain.RFMReport{ID: "abc"}, nil)
	f.repo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, nil)
	f.repo.EXPECT().GetByID(gomock.Any(), "broken").Return(nil, errors.New("timeout"))

	report, err := f.service.GetReport(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", report.ID)

	_, err = f.service.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = f.service.GetReport(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrDatabaseOperation)
}

func TestService_PlotFile(t *testing.T) {
	baseDir := t.TempDir()
	uploads := storage.NewUploadStore(baseDir, "uploads", 1<<20)
	repo := repository.NewMemoryReportRepository()

	run, err := uploads.NewRun()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(run.Dir, "recency_plot.png"), []byte("png"), 0o644))
	require.NoError(t, repo.Save(context.Background(), &domain.RFMReport{ID: run.ID, RunDir: run.Dir}))

	service := NewService(rfm.NewPipeline(""), uploads, nil, repo, []string{".csv"})

	path, err := service.PlotFile(context.Background(), run.ID, domain.MetricRecency)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(run.Dir, "recency_plot.png"), path)

	_, err = service.PlotFile(context.Background(), run.ID, domain.MetricMonetary)
	assert.ErrorIs(t, err, ErrPlotNotFound)

	_, err = service.PlotFile(context.Background(), run.ID, "churn")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = service.PlotFile(context.Background(), "nope", domain.MetricRecency)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestService_Analyze_InfrastructureErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAnalyzer := segmocks.NewMockAnalyzer(ctrl)
	mockStorage := segmocks.NewMockUploadStorage(ctrl)

	service := NewService(mockAnalyzer, mockStorage, plotmocks.NewMockRenderer(ctrl), mocks.NewMockReportRepository(ctrl), []string{".csv"})
	upload := func() domain.Upload {
		return domain.Upload{FileName: "retail.csv", Content: strings.NewReader(retailCSV)}
	}

	t.Run("falha ao criar execução", func(t *testing.T) {
		mockStorage.EXPECT().NewRun().Return(nil, errors.New("read-only file system"))

		_, err := service.Analyze(context.Background(), upload())

		var segErr *SegmentError
		require.ErrorAs(t, err, &segErr)
		assert.ErrorIs(t, err, ErrStorage)
		assert.Equal(t, apiErrors.ErrStorage, segErr.Code)
	})

	t.Run("erro inesperado do pipeline", func(t *testing.T) {
		run := &storage.Run{ID: "run1", Dir: "/data/run1", PublicDir: "uploads/run1"}
		mockStorage.EXPECT().NewRun().Return(run, nil)
		mockStorage.EXPECT().Save(run, "retail.csv", gomock.Any()).Return("/data/run1/retail.csv", nil)
		mockAnalyzer.EXPECT().Run(gomock.Any(), "/data/run1/retail.csv").Return(nil, context.Canceled)
		mockStorage.EXPECT().Remove("/data/run1").Return(nil)

		_, err := service.Analyze(context.Background(), upload())

		var segErr *SegmentError
		require.ErrorAs(t, err, &segErr)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, apiErrors.ErrInternalServer, segErr.Code)
		assert.Equal(t, "run1", segErr.ReportID)
	})
}
