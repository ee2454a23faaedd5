package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	"FinScreen/internal/domain/repository"
	pkgkafka "FinScreen/pkg/kafka"
)

const resultColumns = "screened_at, run_id, company_name, company_code, doc_id, score_ratio, price_earnings_ratio, critical_ratio, stock_price, industry_name, analyst_note, pick_note"

// ResultSchema returns the DDL for the screening result table.
func ResultSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	screened_at DateTime64(3, 'Asia/Tokyo'),
	run_id String,
	company_name String,
	company_code LowCardinality(String),
	doc_id String,
	score_ratio Float64,
	price_earnings_ratio Float64,
	critical_ratio Float64,
	stock_price Float64,
	industry_name LowCardinality(String),
	analyst_note String,
	pick_note String
) ENGINE = ReplacingMergeTree(screened_at)
ORDER BY (company_code, doc_id)`, database, table),
	}
}

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage. table may be qualified
// with the database name.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return s.Health(ctx) // schema is created by pkg/clickhouse
}

func (s *ClickHouseStorage) Store(ctx context.Context, r *models.ScreeningResult) error {
	return s.StoreBatch(ctx, []*models.ScreeningResult{r})
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, results []*models.ScreeningResult) error {
	const chunkSize = 500
	for start := 0; start < len(results); start += chunkSize {
		end := min(start+chunkSize, len(results))

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, r := range results[start:end] {
			if r == nil || r.CompanyName == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.ScreenedAt,
				r.RunID,
				r.CompanyName,
				r.CompanyCode,
				r.DocID,
				r.ScoreRatio,
				r.PriceEarningsRatio,
				r.CriticalRatio,
				r.StockPrice,
				r.IndustryName,
				r.AnalystNote,
				r.PickNote,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, resultColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
	}
	return nil
}

// Query returns results screened since from, best critical ratio first.
// An empty industry matches all; a limit <= 0 returns every row.
func (s *ClickHouseStorage) Query(ctx context.Context, from time.Time, minRatio float64, industry string, limit int) ([]*models.ScreeningResult, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE screened_at >= ? AND critical_ratio >= ?", resultColumns, s.table)
	args := []interface{}{from, minRatio}
	if industry != "" {
		q += " AND industry_name = ?"
		args = append(args, industry)
	}
	q += " ORDER BY critical_ratio DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*models.ScreeningResult
	for rows.Next() {
		var r models.ScreeningResult
		if err := rows.Scan(
			&r.ScreenedAt,
			&r.RunID,
			&r.CompanyName,
			&r.CompanyCode,
			&r.DocID,
			&r.ScoreRatio,
			&r.PriceEarningsRatio,
			&r.CriticalRatio,
			&r.StockPrice,
			&r.IndustryName,
			&r.AnalystNote,
			&r.PickNote,
		); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by
// company code.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.ScreeningResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.CompanyCode), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, results []*models.ScreeningResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(r.CompanyCode), Value: r})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
