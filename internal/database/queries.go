package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (db *PgMessageRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRowContext(
		ctx,
		"INSERT INTO messages (room, author, text_body, image, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at",
		params.Room,
		params.Author,
		nullIfEmpty(params.Text),
		nullIfEmpty(params.Image),
		time.Now().UTC(),
	)

	msg := Message{
		Room:   params.Room,
		Author: params.Author,
		Text:   params.Text,
		Image:  params.Image,
	}
	if err := res.Scan(&msg.Id, &msg.CreatedAt); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return msg, nil
}

func (db *PgMessageRepository) MessagesByRoom(ctx context.Context, room string, limit int) ([]Message, error) {
	query := "SELECT id, room, author, text_body, image, created_at FROM messages " +
		"WHERE room = $1 ORDER BY id ASC"
	args := []any{room}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var messages = make([]Message, 0)
	for rows.Next() {
		var (
			msg   Message
			text  sql.NullString
			image sql.NullString
		)
		if err := rows.Scan(&msg.Id, &msg.Room, &msg.Author, &text, &image, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		msg.Text = text.String
		msg.Image = image.String

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return messages, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
