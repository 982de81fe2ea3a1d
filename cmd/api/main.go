package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/database/postgres"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/plot"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/storage"
	"github.com/vfg2006/rfm-segmentation-api/internal/api"
	"github.com/vfg2006/rfm-segmentation-api/internal/config"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
	"github.com/vfg2006/rfm-segmentation-api/internal/scheduler"
	"github.com/vfg2006/rfm-segmentation-api/internal/usecases/segmenting"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel := log.Configure(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	// Valores monetários saem como número no JSON
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reportRepo, closeRepo := reportRepository(ctx, cfg.Database)
	defer closeRepo()

	uploads := storage.NewUploadStore(cfg.Upload.Dir, cfg.Plot.URLPrefix, cfg.Upload.MaxSizeMB<<20)

	segmenter := segmenting.NewService(
		rfm.NewPipeline(cfg.Pipeline.DateLayout),
		uploads,
		plot.NewHistogramRenderer(cfg.Plot.Bins),
		reportRepo,
		cfg.Upload.AllowedExts,
	)

	reportRetentionService := scheduler.NewReportRetentionService(reportRepo, uploads, cfg)
	if err := reportRetentionService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de retenção de relatórios")
	} else {
		logrus.Info("Agendador de retenção de relatórios iniciado com sucesso")
	}

	server, err := api.New(cfg, segmenter, reportRetentionService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// reportRepository usa o PostgreSQL quando habilitado e a memória caso contrário
func reportRepository(ctx context.Context, dbConfig config.Database) (repository.ReportRepository, func()) {
	if !dbConfig.Enabled {
		logrus.Info("Banco de dados desabilitado, relatórios serão mantidos em memória")
		return repository.NewMemoryReportRepository(), func() {}
	}

	conn := pgconn(ctx, dbConfig)
	if err := conn.EnsureSchema(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar schema do PostgreSQL")
	}

	return repository.NewReportRepository(conn), func() { _ = conn.Close() }
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
