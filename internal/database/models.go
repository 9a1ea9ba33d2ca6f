package database

import "time"

type Message struct {
	Id        int64
	Room      string
	Author    string
	Text      string
	Image     string
	CreatedAt time.Time
}

type CreateMessageParams struct {
	Room   string
	Author string
	Text   string
	Image  string
}
