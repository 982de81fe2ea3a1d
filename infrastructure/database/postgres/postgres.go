package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/vfg2006/rfm-segmentation-api/internal/config"
)

// Transactor abre transações para os repositórios
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Conn é o que os repositórios recebem: consultas diretas e transações
type Conn interface {
	Queryer
	Transactor
	Close() error
	Ping(context.Context) error
}

type Connection struct {
	*sql.DB
}

func NewConnection(ctx context.Context, cfg config.Database) (*Connection, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Connection{DB: db}, nil
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// RunInTransaction faz commit se fn terminar sem erro. Em erro ou panic o
// rollback é feito e o erro de fn continua sendo o principal.
func (c *Connection) RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("erro no rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro no commit: %w", err)
	}
	return nil
}
