package handler

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/internal/usecases/segmenting"
	"github.com/vfg2006/rfm-segmentation-api/pkg/apiErrors"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Espaço reservado para os cabeçalhos do multipart além do arquivo
const multipartOverhead = 1 << 20

// Memória usada pelo ParseMultipartForm; o excedente vai para arquivos temporários
const multipartMemory = 8 << 20

// LimitBody corta o corpo da requisição acima de maxBytes
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UploadTransactions recebe o CSV no campo "file" e devolve a tabela RFM
func UploadTransactions(service segmenting.Segmenter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				apiErrors.WriteError(w, apiErrors.ErrFileTooLarge, "Arquivo acima do limite", map[string]int64{"limit_bytes": maxBytesErr.Limit})
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Envie o arquivo como multipart/form-data", nil)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhum arquivo enviado no campo 'file'", nil)
			return
		}
		defer file.Close()

		if header.Filename == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhum arquivo selecionado", nil)
			return
		}

		report, err := service.Analyze(r.Context(), domain.Upload{
			FileName: header.Filename,
			Content:  file,
		})
		if err != nil {
			logger.WithError(err).Warn("Erro ao processar upload")
			writeSegmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, report)
	})
}

func GetReport(service segmenting.Segmenter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		report, err := service.GetReport(r.Context(), id)
		if err != nil {
			writeSegmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	})
}

// GetPlot serve o PNG de uma métrica do relatório
func GetPlot(service segmenting.Segmenter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())

		path, err := service.PlotFile(r.Context(), params.ByName("id"), params.ByName("metric"))
		if err != nil {
			writeSegmentError(w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		http.ServeFile(w, r, path)
	})
}

func writeSegmentError(w http.ResponseWriter, err error) {
	var segErr *segmenting.SegmentError
	if errors.As(err, &segErr) {
		var details any
		if segErr.ReportID != "" {
			details = map[string]string{"report_id": segErr.ReportID}
		}
		apiErrors.WriteError(w, segErr.Code, segErr.Error(), details)
		return
	}
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao processar relatório RFM", nil)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithError(err).Error("Erro ao codificar resposta")
	}
}
