package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the PayLater store (PostgreSQL).
var Migrations = migrate.NewGroup("paylater")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_paylater_accounts",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_accounts (
    phone               TEXT PRIMARY KEY,
    id                  TEXT NOT NULL DEFAULT '',
    user_id             TEXT NOT NULL DEFAULT '',
    credit_limit        BIGINT NOT NULL DEFAULT 0,
    available_limit     BIGINT NOT NULL DEFAULT 0,
    used_limit          BIGINT NOT NULL DEFAULT 0,
    status              TEXT NOT NULL DEFAULT 'active',
    admin_initial_limit BIGINT NOT NULL DEFAULT 0,
    limit_growth_total  BIGINT NOT NULL DEFAULT 0,
    version             BIGINT NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_paylater_accounts_id ON paylater_accounts (id);
CREATE INDEX IF NOT EXISTS idx_paylater_accounts_status ON paylater_accounts (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paylater_invoices",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_invoices (
    id                   TEXT PRIMARY KEY,
    phone                TEXT NOT NULL DEFAULT '',
    source_order_id      TEXT NOT NULL DEFAULT '',
    principal            BIGINT NOT NULL DEFAULT 0,
    tenor_weeks          INTEGER NOT NULL DEFAULT 0,
    fee_percent          DOUBLE PRECISION NOT NULL DEFAULT 0,
    fee_amount           BIGINT NOT NULL DEFAULT 0,
    total_before_penalty BIGINT NOT NULL DEFAULT 0,
    penalty_amount       BIGINT NOT NULL DEFAULT 0,
    total_due            BIGINT NOT NULL DEFAULT 0,
    paid_amount          BIGINT NOT NULL DEFAULT 0,
    due_date             TIMESTAMPTZ NOT NULL DEFAULT now(),
    paid_at              TIMESTAMPTZ,
    status               TEXT NOT NULL DEFAULT 'active',
    notes                TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_paylater_invoices_phone ON paylater_invoices (phone, status);
CREATE INDEX IF NOT EXISTS idx_paylater_invoices_due ON paylater_invoices (status, due_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paylater_ledger",
			Version: "20260101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_ledger (
    id             TEXT PRIMARY KEY,
    phone          TEXT NOT NULL DEFAULT '',
    entry_type     TEXT NOT NULL DEFAULT '',
    amount         BIGINT NOT NULL DEFAULT 0,
    balance_before BIGINT NOT NULL DEFAULT 0,
    balance_after  BIGINT NOT NULL DEFAULT 0,
    ref_id         TEXT NOT NULL DEFAULT '',
    actor          TEXT NOT NULL DEFAULT '',
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_paylater_ledger_phone ON paylater_ledger (phone, created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_paylater_ledger_dedup ON paylater_ledger (phone, entry_type, ref_id) WHERE ref_id != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_ledger`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paylater_settings",
			Version: "20260101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paylater_schedules",
			Version: "20260101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_schedules (
    name       TEXT PRIMARY KEY,
    id         TEXT NOT NULL DEFAULT '',
    every_ns   BIGINT NOT NULL DEFAULT 0,
    enabled    BOOLEAN NOT NULL DEFAULT TRUE,
    last_run   TIMESTAMPTZ,
    last_err   TEXT NOT NULL DEFAULT '',
    run_count  BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_schedules`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paylater_reports",
			Version: "20260101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paylater_reports (
    id           TEXT PRIMARY KEY,
    period_start TIMESTAMPTZ NOT NULL DEFAULT now(),
    period_end   TIMESTAMPTZ NOT NULL DEFAULT now(),
    stats        JSONB NOT NULL DEFAULT '{}',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_paylater_reports_period ON paylater_reports (period_start);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paylater_reports`)
				return err
			},
		},
	)
}
