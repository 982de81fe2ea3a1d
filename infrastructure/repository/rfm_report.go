// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/database/postgres"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	rfmReportsTable = "rfm_reports rr"
)

var rfmReportColumns = []string{
	"rr.id",
	"rr.file_name",
	"rr.run_dir",
	"rr.customers",
	"rr.plots",
	"rr.stats",
	"rr.created_at",
}

//go:generate mockgen -source=rfm_report.go -destination=mocks/mock_rfm_report.go -package=mocks

// ReportRepository guarda os relatórios RFM gerados a partir dos uploads
type ReportRepository interface {
	Save(ctx context.Context, report *domain.RFMReport) error
	// GetByID retorna nil, nil quando o relatório não existe
	GetByID(ctx context.Context, id string) (*domain.RFMReport, error)
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.RFMReport, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// RunInTransaction executa fn com um repositório ligado a uma única transação
	RunInTransaction(ctx context.Context, fn func(repo ReportRepository) error) error
}

type reportRepository struct {
	conn postgres.Queryer
	tx   postgres.Transactor // nil quando o repositório já está dentro de uma transação
}

func NewReportRepository(conn postgres.Conn) ReportRepository {
	return &reportRepository{
		conn: conn,
		tx:   conn,
	}
}

func (r *reportRepository) RunInTransaction(ctx context.Context, fn func(repo ReportRepository) error) error {
	if r.tx == nil {
		return fn(r)
	}
	return r.tx.RunInTransaction(ctx, func(tx *sql.Tx) error {
		return fn(&reportRepository{conn: tx})
	})
}

func (r *reportRepository) Save(ctx context.Context, report *domain.RFMReport) error {
	query, args, err := saveReportQuery(report)
	if err != nil {
		return err
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao salvar relatório %s: %w", report.ID, err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.RFMReport, error) {
	query, args, err := squirrel.
		Select(rfmReportColumns...).
		From(rfmReportsTable).
		Where(squirrel.Eq{"rr.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	report, err := r.scanReport(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear relatório: %w", err)
	}

	return report, nil
}

func (r *reportRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.RFMReport, error) {
	query, args, err := listOlderThanQuery(cutoff)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.RFMReport, 0)
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear relatório: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return reports, nil
}

func (r *reportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := squirrel.
		Delete("rfm_reports").
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao remover relatórios antigos: %w", err)
	}

	return result.RowsAffected()
}

func saveReportQuery(report *domain.RFMReport) (string, []interface{}, error) {
	customers, err := json.Marshal(report.Customers)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar clientes: %w", err)
	}
	plots, err := json.Marshal(report.Plots)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar gráficos: %w", err)
	}
	stats, err := json.Marshal(report.Stats)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar estatísticas: %w", err)
	}

	query, args, err := squirrel.
		Insert("rfm_reports").
		Columns("id", "file_name", "run_dir", "customers", "plots", "stats", "created_at").
		Values(report.ID, report.FileName, report.RunDir, customers, plots, stats, report.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET customers = EXCLUDED.customers, plots = EXCLUDED.plots, stats = EXCLUDED.stats").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("erro ao construir a query: %w", err)
	}
	return query, args, nil
}

func listOlderThanQuery(cutoff time.Time) (string, []interface{}, error) {
	query, args, err := squirrel.
		Select(rfmReportColumns...).
		From(rfmReportsTable).
		Where(squirrel.Lt{"rr.created_at": cutoff}).
		OrderBy("rr.created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("erro ao construir a query: %w", err)
	}
	return query, args, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *reportRepository) scanReport(row scanner) (*domain.RFMReport, error) {
	var (
		report                  domain.RFMReport
		customers, plots, stats []byte
	)

	if err := row.Scan(
		&report.ID,
		&report.FileName,
		&report.RunDir,
		&customers,
		&plots,
		&stats,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(customers, &report.Customers); err != nil {
		return nil, fmt.Errorf("erro ao deserializar clientes: %w", err)
	}
	if err := json.Unmarshal(plots, &report.Plots); err != nil {
		return nil, fmt.Errorf("erro ao deserializar gráficos: %w", err)
	}
	if err := json.Unmarshal(stats, &report.Stats); err != nil {
		return nil, fmt.Errorf("erro ao deserializar estatísticas: %w", err)
	}

	return &report, nil
}
