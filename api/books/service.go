package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api/books/journal"
	"TallyBridge/internal/serviceiface"
)

type BooksService struct {
	config  map[string]interface{}
	db      *sql.DB
	pgxPool *pgxpool.Pool
}

func NewBooksService(cfg map[string]interface{}, db *sql.DB, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &BooksService{config: cfg, db: db, pgxPool: pgxPool}
}

func (s *BooksService) Name() string {
	return "books"
}

func (s *BooksService) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := journal.EnsureStagingSchema(ctx, s.pgxPool); err != nil {
		return err
	}
	go StartBooksService(s.db, s.pgxPool)
	return nil
}

func (s *BooksService) Stop() error {
	// Listener shuts down with the process.
	return nil
}
