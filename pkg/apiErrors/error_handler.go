package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro devolvidos pela API
const (
	// Erros do pipeline RFM
	ErrRFMLoad     = "RFM_001" // Arquivo ilegível, não é CSV ou faltam colunas
	ErrRFMCleaning = "RFM_002" // Nenhuma linha completa no arquivo
	ErrRFMRecency  = "RFM_003" // Nenhuma data de nota reconhecida
	ErrRFMJoin     = "RFM_004" // Tabelas de métricas sem cliente em comum

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrFileTooLarge        = "VAL_004" // Arquivo acima do limite

	// Erros de recurso
	ErrNotFound = "RES_001" // Recurso não encontrado

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrStorage           = "SRV_003" // Erro ao gravar ou ler arquivos
	ErrRender            = "SRV_004" // Erro ao gerar os histogramas
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrRFMLoad:             http.StatusBadRequest,
	ErrRFMCleaning:         http.StatusUnprocessableEntity,
	ErrRFMRecency:          http.StatusUnprocessableEntity,
	ErrRFMJoin:             http.StatusUnprocessableEntity,
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrInvalidFormat:       http.StatusBadRequest,
	ErrFileTooLarge:        http.StatusRequestEntityTooLarge,
	ErrNotFound:            http.StatusNotFound,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrDatabaseOperation:   http.StatusInternalServerError,
	ErrStorage:             http.StatusInternalServerError,
	ErrRender:              http.StatusInternalServerError,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// StatusFor retorna o status HTTP de um código, 500 se desconhecido
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(apiErr)
}
