package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	pkgch "RecoPulse/pkg/clickhouse"
	applogger "RecoPulse/pkg/logger"
)

const candleTable = "recopulse.daily_candles"

// CandleSchema creates the daily candle table used by CHCandleStore.
var CandleSchema = []string{
	`CREATE DATABASE IF NOT EXISTS recopulse`,
	`CREATE TABLE IF NOT EXISTS ` + candleTable + ` (
        bucket      Date,
        symbol      LowCardinality(String),
        open        Float64,
        high        Float64,
        low         Float64,
        close       Float64,
        vol         Float64,
        inserted_at DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(inserted_at)
    ORDER BY (symbol, bucket)`,
}

// CHCandleStore stores daily candles in ClickHouse and reads them back for analysis.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var (
	_ domrepo.CandleSource = (*CHCandleStore)(nil)
	_ domrepo.CandleWriter = (*CHCandleStore)(nil)
)

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB(), l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHCandleStore) DailyCandles(ctx context.Context, symbol string, lookback time.Duration) ([]models.Candle, error) {
	start := time.Now()
	from := start.Add(-lookback)
	q := `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM ` + candleTable + ` FINAL
        WHERE symbol = ? AND bucket >= ?
        ORDER BY bucket ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.l.Error("clickhouse daily_candles query error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.l.Error("clickhouse daily_candles scan error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse daily_candles ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// SaveCandles inserts bars in a single transaction. Duplicates collapse on merge.
func (s *CHCandleStore) SaveCandles(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+candleTable+` (bucket, symbol, open, high, low, close, vol)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Bucket, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert candle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.l.Debug("clickhouse daily_candles saved",
		applogger.String("symbol", candles[0].Symbol),
		applogger.Int("rows", len(candles)),
	)
	return nil
}
