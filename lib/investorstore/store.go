// Package investorstore persists extracted investor records and the
// fetch queue that feeds them.
package investorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"investor-parser/lib/investorstore/db"
	"investor-parser/lib/scrapers/signal"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// fetches that failed this many times stay failed
const maxFetchAttempts = 3

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// SaveRecord upserts a record keyed by its source file.
func (s Store) SaveRecord(ctx context.Context, record signal.InvestorRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO investors (source_file, name, extraction_method, record, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (source_file) DO UPDATE SET
	name = excluded.name,
	extraction_method = excluded.extraction_method,
	record = excluded.record,
	updated_at = excluded.updated_at
`, record.SourceFile, record.Name, record.ExtractionMethod, string(encoded), time.Now().Unix())
	return err
}

func (s Store) GetRecord(ctx context.Context, sourceFile string) (signal.InvestorRecord, bool, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM investors WHERE source_file = ?`,
		sourceFile,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return signal.InvestorRecord{}, false, nil
	}
	if err != nil {
		return signal.InvestorRecord{}, false, err
	}

	var record signal.InvestorRecord
	err = json.Unmarshal([]byte(encoded), &record)
	if err != nil {
		return signal.InvestorRecord{}, false, err
	}
	return record, true, nil
}

// ListRecords returns every stored record ordered by investor name.
func (s Store) ListRecords(ctx context.Context) ([]signal.InvestorRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM investors ORDER BY name, source_file`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []signal.InvestorRecord
	for rows.Next() {
		var encoded string
		err := rows.Scan(&encoded)
		if err != nil {
			return nil, err
		}
		var record signal.InvestorRecord
		err = json.Unmarshal([]byte(encoded), &record)
		if err != nil {
			slog.WarnContext(ctx, "failed to unmarshal stored record", "err", err)
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type QueueItem struct {
	Url        string
	Name       string
	RetryCount int64
}

// Enqueue adds a url to the fetch queue. Urls already queued are left
// untouched.
func (s Store) Enqueue(ctx context.Context, url, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO fetch_queue (url, name, status)
VALUES (?, ?, ?)
ON CONFLICT (url) DO NOTHING
`, url, name, string(db.FETCH_PENDING))
	return err
}

// Requeue forces a url back to pending with a fresh retry budget,
// whatever state its row is in.
func (s Store) Requeue(ctx context.Context, url, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO fetch_queue (url, name, status)
VALUES (?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
	status = excluded.status,
	retry_count = 0,
	error_message = ''
`, url, name, string(db.FETCH_PENDING))
	return err
}

// NextPending claims the next queued url, moving it to in_progress.
// ok is false when the queue is drained.
func (s Store) NextPending(ctx context.Context) (item QueueItem, ok bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return QueueItem{}, false, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
SELECT url, name, retry_count FROM fetch_queue
WHERE status = ?
ORDER BY last_attempt, url
LIMIT 1
`, string(db.FETCH_PENDING)).Scan(&item.Url, &item.Name, &item.RetryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return QueueItem{}, false, nil
	}
	if err != nil {
		return QueueItem{}, false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE fetch_queue SET status = ?, last_attempt = ? WHERE url = ?`,
		string(db.FETCH_IN_PROGRESS), time.Now().Unix(), item.Url)
	if err != nil {
		return QueueItem{}, false, err
	}
	return item, true, tx.Commit()
}

func (s Store) MarkCompleted(ctx context.Context, url, outputPath string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE fetch_queue SET status = ?, output_path = ?, error_message = '' WHERE url = ?
`, string(db.FETCH_COMPLETED), outputPath, url)
	return err
}

// MarkFailed records a fetch failure. The url goes back to pending
// until it runs out of attempts.
func (s Store) MarkFailed(ctx context.Context, url, message string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var retries int64
	err = tx.QueryRowContext(ctx,
		`SELECT retry_count FROM fetch_queue WHERE url = ?`, url).Scan(&retries)
	if err != nil {
		return err
	}

	retries++
	status := db.FETCH_PENDING
	if retries >= maxFetchAttempts {
		status = db.FETCH_FAILED
	}
	_, err = tx.ExecContext(ctx, `
UPDATE fetch_queue SET status = ?, retry_count = ?, error_message = ?, last_attempt = ? WHERE url = ?
`, string(status), retries, message, time.Now().Unix(), url)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ResetInProgress returns urls a dead run left in_progress to pending.
func (s Store) ResetInProgress(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE fetch_queue SET status = ? WHERE status = ?`,
		string(db.FETCH_PENDING), string(db.FETCH_IN_PROGRESS))
	return err
}

type QueueStatus struct {
	Pending    int64
	InProgress int64
	Completed  int64
	Failed     int64
}

func (s Store) QueueStatus(ctx context.Context) (QueueStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM fetch_queue GROUP BY status`)
	if err != nil {
		return QueueStatus{}, err
	}
	defer rows.Close()

	var status QueueStatus
	for rows.Next() {
		var name string
		var count int64
		err := rows.Scan(&name, &count)
		if err != nil {
			return QueueStatus{}, err
		}
		switch db.FetchStatus(name) {
		case db.FETCH_PENDING:
			status.Pending = count
		case db.FETCH_IN_PROGRESS:
			status.InProgress = count
		case db.FETCH_COMPLETED:
			status.Completed = count
		case db.FETCH_FAILED:
			status.Failed = count
		}
	}
	return status, rows.Err()
}
