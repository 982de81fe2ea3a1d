package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/repository"
	"github.com/vfg2006/rfm-segmentation-api/internal/config"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// RunRemover apaga o diretório de uma execução
type RunRemover interface {
	Remove(dir string) error
}

// ReportRetentionConfig representa a configuração da limpeza de relatórios antigos
type ReportRetentionConfig struct {
	CronSchedule  string
	RetentionDays int
	SyncEnabled   bool
}

// ReportRetentionService apaga periodicamente relatórios e arquivos mais antigos que a retenção
type ReportRetentionService struct {
	scheduler           *gocron.Scheduler
	config              ReportRetentionConfig
	reportRepo          repository.ReportRepository
	runs                RunRemover
	now                 func() time.Time
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastPurged          int64
}

// NewReportRetentionService cria o serviço de retenção a partir da config global
func NewReportRetentionService(
	reportRepo repository.ReportRepository,
	runs RunRemover,
	appConfig *config.Config,
) *ReportRetentionService {
	retentionConfig := ReportRetentionConfig{
		CronSchedule:  appConfig.ReportRetention.CronSchedule,
		RetentionDays: appConfig.ReportRetention.Days,
		SyncEnabled:   appConfig.ReportRetention.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  retentionConfig.CronSchedule,
		"retention_days": retentionConfig.RetentionDays,
		"sync_enabled":   retentionConfig.SyncEnabled,
	}).Info("Configuração da retenção de relatórios carregada")

	return &ReportRetentionService{
		scheduler:  gocron.NewScheduler(time.Local),
		config:     retentionConfig,
		reportRepo: reportRepo,
		runs:       runs,
		now:        time.Now,
	}
}

// Start inicia o agendador
func (s *ReportRetentionService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Retenção de relatórios desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de retenção de relatórios")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.purgeExpiredReports(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar retenção de relatórios: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de retenção de relatórios")
		s.scheduler.Stop()
	}()

	return nil
}

// Purge apaga agora os relatórios vencidos e devolve quantos foram removidos.
// Os registros saem em uma transação; os diretórios só depois do commit.
func (s *ReportRetentionService) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)

	var (
		expired []*domain.RFMReport
		deleted int64
	)
	err := s.reportRepo.RunInTransaction(ctx, func(repo repository.ReportRepository) error {
		var err error
		expired, err = repo.ListOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("erro ao listar relatórios vencidos: %w", err)
		}

		deleted, err = repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("erro ao apagar relatórios vencidos: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, report := range expired {
		if report.RunDir == "" {
			continue
		}
		if err := s.runs.Remove(report.RunDir); err != nil {
			logrus.WithError(err).WithField("report_id", report.ID).Warn("Erro ao remover arquivos do relatório")
		}
	}

	return deleted, nil
}

func (s *ReportRetentionService) purgeExpiredReports(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Retenção de relatórios já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	deleted, err := s.Purge(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro na retenção de relatórios")
		return
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = s.now()
	s.lastPurged = deleted
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"deleted":        deleted,
		"retention_days": s.config.RetentionDays,
	}).Info("Retenção de relatórios concluída")
}

// TriggerManualSync inicia manualmente a limpeza de relatórios
func (s *ReportRetentionService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Retenção de relatórios já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando retenção manual de relatórios")
	go s.purgeExpiredReports(context.Background())
}

// GetStatus retorna o status atual da limpeza
func (s *ReportRetentionService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"retention_days":         s.config.RetentionDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_purged":            s.lastPurged,
	}
}
