package segmenting

import (
	"errors"
	"fmt"
)

// Erros específicos da segmentação RFM
var (
	// Erros de validação
	ErrFileRequired    = errors.New("file is required")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnknownMetric   = errors.New("unknown metric")
	ErrReportNotFound  = errors.New("report not found")
	ErrPlotNotFound    = errors.New("plot not found")

	// Erros do pipeline
	ErrPipeline = errors.New("rfm pipeline failed")

	// Erros de infraestrutura
	ErrStorage           = errors.New("upload storage error")
	ErrRender            = errors.New("error rendering histograms")
	ErrDatabaseOperation = errors.New("database operation error")
)

// SegmentError é um erro com o código da API e o relatório envolvido
type SegmentError struct {
	Err      error  // Erro base
	Code     string // Código de erro para API
	ReportID string // ID do relatório (quando aplicável)
	Details  string // Detalhes adicionais
	Cause    error  // Erro original (opcional)
}

// Error implementa a interface error
func (e *SegmentError) Error() string {
	msg := e.Err.Error()
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap retorna o erro base e a causa
func (e *SegmentError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewSegmentError cria um novo SegmentError
func NewSegmentError(err error, code string, details string) *SegmentError {
	return &SegmentError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewSegmentErrorWithCause cria um SegmentError que preserva o erro original
func NewSegmentErrorWithCause(err error, code string, reportID string, details string, cause error) *SegmentError {
	return &SegmentError{
		Err:      err,
		Code:     code,
		ReportID: reportID,
		Details:  details,
		Cause:    cause,
	}
}
