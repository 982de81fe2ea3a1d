package handler

import (
	"net/http"

	"github.com/vfg2006/rfm-segmentation-api/internal/api/handler/router"
	"github.com/vfg2006/rfm-segmentation-api/internal/usecases/segmenting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func RFM(service segmenting.Segmenter, maxUploadBytes int64) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/rfm/uploads",
			Method:      http.MethodPost,
			Handler:     UploadTransactions(service),
			Middlewares: []func(http.Handler) http.Handler{LimitBody(maxUploadBytes)},
		},
		{
			Path:    "/v1/rfm/reports/:id",
			Method:  http.MethodGet,
			Handler: GetReport(service),
		},
		{
			Path:    "/v1/rfm/reports/:id/plots/:metric",
			Method:  http.MethodGet,
			Handler: GetPlot(service),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
