package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/rfm-segmentation-api/internal/scheduler"
	"github.com/vfg2006/rfm-segmentation-api/pkg/apiErrors"
)

// Tipos de cron job aceitos em /v1/cron/:type/run
const (
	CronJobTypeReportRetention = "report-retention"
	CronJobTypeAll             = "all"
)

// CronJobServices contém os serviços de cron que podem ser executados manualmente
type CronJobServices struct {
	ReportRetentionService *scheduler.ReportRetentionService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeReportRetention, CronJobTypeAll:
			if services.ReportRetentionService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de retenção de relatórios não disponível", nil)
				return
			}
			services.ReportRetentionService.TriggerManualSync()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: report-retention, all", nil)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.ReportRetentionService != nil {
			status[CronJobTypeReportRetention] = services.ReportRetentionService.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
