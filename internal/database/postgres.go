package database

import (
	"database/sql"
)

type PgMessageRepository struct {
	conn *sql.DB
}

func NewPgMessageRepository(dsn string) (*PgMessageRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgMessageRepository{conn: db}, nil
}

func (db *PgMessageRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgMessageRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
