package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS rfm_reports (
	id          VARCHAR(32) PRIMARY KEY,
	file_name   TEXT        NOT NULL,
	run_dir     TEXT        NOT NULL,
	customers   JSONB       NOT NULL,
	plots       JSONB       NOT NULL,
	stats       JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rfm_reports_created_at ON rfm_reports (created_at);
`

// EnsureSchema cria as tabelas usadas pelos repositórios, se ainda não existirem
func (c *Connection) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("erro ao criar schema: %w", err)
	}
	return nil
}
