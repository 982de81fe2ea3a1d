package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/plot"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/storage"
	"github.com/vfg2006/rfm-segmentation-api/internal/config"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
	"github.com/vfg2006/rfm-segmentation-api/internal/usecases/segmenting"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

const retailCSV = "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
	"536365,85123A,WHITE HANGING HEART,6,01/12/2010 08:26,2.55,17850.0,United Kingdom\n" +
	"536366,22633,HAND WARMER,6,01/12/2010 08:28,1.85,17850.0,United Kingdom\n" +
	"536367,84879,ASSORTED BIRD,32,03/12/2010 09:00,1.69,13047.0,United Kingdom\n" +
	"536368,22960,JAM MAKING SET,6,,4.25,13047.0,United Kingdom\n"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	log.SetupTestLogger()
}

// Sobe a aplicação inteira com repositório em memória e histogramas reais
func TestServer_UploadAndFetchReport(t *testing.T) {
	cfg := &config.Config{
		Server:   config.Server{AllowedOrigins: []string{"http://localhost:3000"}},
		Upload:   config.Upload{Dir: t.TempDir(), MaxSizeMB: 1, AllowedExts: []string{".csv"}},
		Plot:     config.Plot{Bins: 10, URLPrefix: "uploads"},
		Pipeline: config.Pipeline{DateLayout: rfm.DefaultDateLayout},
	}

	uploads := storage.NewUploadStore(cfg.Upload.Dir, cfg.Plot.URLPrefix, cfg.Upload.MaxSizeMB<<20)
	segmenter := segmenting.NewService(
		rfm.NewPipeline(cfg.Pipeline.DateLayout),
		uploads,
		plot.NewHistogramRenderer(cfg.Plot.Bins),
		repository.NewMemoryReportRepository(),
		cfg.Upload.AllowedExts,
	)

	srv, err := New(cfg, segmenter, nil)
	require.NoError(t, err)
	h := srv.Handler()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "retail.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(retailCSV))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfm/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	var created struct {
		ID        string `json:"id"`
		Customers []struct {
			CustomerID string `json:"CustomerID"`
			Frequency  int    `json:"Frequency"`
			Recency    int    `json:"Recency"`
		} `json:"customers"`
		Plots map[string]string `json:"plots"`
		Stats struct {
			DroppedRows int `json:"dropped_rows"`
			Customers   int `json:"customers"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	require.Len(t, created.Customers, 2)
	assert.Equal(t, "13047", created.Customers[0].CustomerID)
	assert.Equal(t, 1, created.Customers[0].Frequency)
	assert.Equal(t, 0, created.Customers[0].Recency)
	assert.Equal(t, "17850", created.Customers[1].CustomerID)
	assert.Equal(t, 2, created.Customers[1].Frequency)
	assert.Equal(t, 2, created.Customers[1].Recency)
	assert.Equal(t, 1, created.Stats.DroppedRows)
	assert.Len(t, created.Plots, 3)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/rfm/reports/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/rfm/reports/"+created.ID+"/plots/monetary", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := New(&config.Config{Upload: config.Upload{MaxSizeMB: 1}}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, srv.Shutdown(context.Background()))
}
