package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/boardlab/amazon-board-crawler/internal/models"
)

// Counter names, one independent seq stream per document kind.
const (
	CounterProducts = "product_master"
	CounterReviews  = "reviews"
	CounterRankings = "rankings"
)

// Store persists crawl documents and serves the seq-cursor reads behind
// the API.
type Store struct {
	db     *DB
	logger *slog.Logger
}

func NewStore(db *DB) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "store"),
	}
}

// NextSequence atomically increments and returns the named counter.
func (s *Store) NextSequence(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx,
		`INSERT INTO counters (name, seq) VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`, name).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}
	return seq, nil
}

// SaveProducts upserts product records by ASIN. Each write takes a fresh
// seq even on conflict, so cursor consumers re-sync updated products.
func (s *Store) SaveProducts(ctx context.Context, records []*models.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range records {
			seq, err := s.NextSequence(ctx, tx, CounterProducts)
			if err != nil {
				return err
			}
			rec.Seq = seq

			doc, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal product %s: %w", rec.ASIN, err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO product_master (asin, seq, crawl_date, doc)
				 VALUES ($1, $2, CURRENT_DATE, $3)
				 ON CONFLICT (asin) DO UPDATE
				 SET seq = EXCLUDED.seq, crawl_date = EXCLUDED.crawl_date, doc = EXCLUDED.doc`,
				rec.ASIN, seq, doc)
			if err != nil {
				return fmt.Errorf("failed to save product %s: %w", rec.ASIN, err)
			}
		}
		s.logger.Info("saved products", "count", len(records))
		return nil
	})
}

// SaveReviews appends review records, one row per review.
func (s *Store) SaveReviews(ctx context.Context, reviews []models.ReviewRecord) error {
	if len(reviews) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for i := range reviews {
			seq, err := s.NextSequence(ctx, tx, CounterReviews)
			if err != nil {
				return err
			}
			reviews[i].Seq = seq

			doc, err := json.Marshal(reviews[i])
			if err != nil {
				return fmt.Errorf("failed to marshal review: %w", err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO reviews (seq, asin, doc) VALUES ($1, $2, $3)`,
				seq, reviews[i].ASIN, doc)
			if err != nil {
				return fmt.Errorf("failed to save review for %s: %w", reviews[i].ASIN, err)
			}
		}
		s.logger.Info("saved reviews", "count", len(reviews))
		return nil
	})
}

// SaveRankings appends bestseller entries.
func (s *Store) SaveRankings(ctx context.Context, entries []models.BestsellerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for i := range entries {
			seq, err := s.NextSequence(ctx, tx, CounterRankings)
			if err != nil {
				return err
			}
			entries[i].Seq = seq

			doc, err := json.Marshal(entries[i])
			if err != nil {
				return fmt.Errorf("failed to marshal ranking entry: %w", err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO rankings (seq, board_name, doc) VALUES ($1, $2, $3)`,
				seq, entries[i].BoardName, doc)
			if err != nil {
				return fmt.Errorf("failed to save ranking entry: %w", err)
			}
		}
		s.logger.Info("saved rankings", "count", len(entries))
		return nil
	})
}

// SaveFailures appends failure records. Failures are never updated.
func (s *Store) SaveFailures(ctx context.Context, failures []models.FailureRecord) error {
	if len(failures) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, f := range failures {
			doc, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("failed to marshal failure: %w", err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO failures (doc) VALUES ($1)`, doc); err != nil {
				return fmt.Errorf("failed to save failure for %s: %w", f.ASIN, err)
			}
		}
		return nil
	})
}

// Page is one cursor read: the documents after last_seq plus the counts
// a consumer needs to keep paging.
type Page struct {
	Items  []json.RawMessage
	Remain int64
	Total  int64
}

func (p Page) HasNext() bool { return p.Remain > 0 }

// ReadReviews pages review documents by seq, joining each review's
// product name in from product_master.
func (s *Store) ReadReviews(ctx context.Context, lastSeq int64, count int) (Page, error) {
	return s.readPage(ctx,
		`SELECT r.seq, r.doc || jsonb_build_object('product_name', COALESCE(p.doc->>'product_name', ''))
		 FROM reviews r
		 LEFT JOIN product_master p ON p.asin = r.asin
		 WHERE r.seq > $1 ORDER BY r.seq LIMIT $2`,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE seq > $1) FROM reviews`,
		lastSeq, count)
}

// ReadRankings pages bestseller documents by seq.
func (s *Store) ReadRankings(ctx context.Context, lastSeq int64, count int) (Page, error) {
	return s.readPage(ctx,
		`SELECT seq, doc FROM rankings WHERE seq > $1 ORDER BY seq LIMIT $2`,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE seq > $1) FROM rankings`,
		lastSeq, count)
}

// ReadProducts pages product documents by seq.
func (s *Store) ReadProducts(ctx context.Context, lastSeq int64, count int) (Page, error) {
	return s.readPage(ctx,
		`SELECT seq, doc FROM product_master WHERE seq > $1 ORDER BY seq LIMIT $2`,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE seq > $1) FROM product_master`,
		lastSeq, count)
}

func (s *Store) readPage(ctx context.Context, rowsSQL, countSQL string, lastSeq int64, count int) (Page, error) {
	if count <= 0 {
		count = 100
	}

	var page Page
	var pending int64
	if err := s.db.QueryRow(ctx, countSQL, lastSeq).Scan(&page.Total, &pending); err != nil {
		return Page{}, fmt.Errorf("failed to count documents: %w", err)
	}

	rows, err := s.db.Query(ctx, rowsSQL, lastSeq, count)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var doc []byte
		if err := rows.Scan(&seq, &doc); err != nil {
			return Page{}, fmt.Errorf("failed to scan document: %w", err)
		}
		page.Items = append(page.Items, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("failed to iterate documents: %w", err)
	}

	page.Remain = pending - int64(len(page.Items))
	if page.Remain < 0 {
		page.Remain = 0
	}
	return page, nil
}

// CrawledASINs lists ASINs already persisted today, so an interrupted
// run can resume without redoing finished items.
func (s *Store) CrawledASINs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx,
		`SELECT asin FROM product_master WHERE crawl_date = CURRENT_DATE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawled asins: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var asin string
		if err := rows.Scan(&asin); err != nil {
			return nil, fmt.Errorf("failed to scan asin: %w", err)
		}
		done[asin] = struct{}{}
	}
	return done, rows.Err()
}

// ReviewedASINs lists ASINs whose reviews were crawled on the given
// date (YYYY-MM-DD).
func (s *Store) ReviewedASINs(ctx context.Context, crawlDate string) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT asin FROM reviews WHERE doc->>'crawl_date' = $1`, crawlDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewed asins: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var asin string
		if err := rows.Scan(&asin); err != nil {
			return nil, fmt.Errorf("failed to scan asin: %w", err)
		}
		done[asin] = struct{}{}
	}
	return done, rows.Err()
}
