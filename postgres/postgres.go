package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/GetStream/pairchat/chat"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and ping the DB to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// Close closes the database.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// CreateSchema creates the users and messages tables when they do not exist.
func (pg *Postgres) CreateSchema(ctx context.Context) error {
	for _, model := range []any{(*user)(nil), (*message)(nil)} {
		if _, err := pg.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	_, err := pg.bun.NewCreateIndex().
		Model((*message)(nil)).
		Index("messages_pair_code_timestamp_idx").
		IfNotExists().
		Column("pair_code", "timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// GetUser returns the profile of uid, or chat.ErrNotFound.
func (pg *Postgres) GetUser(ctx context.Context, uid string) (chat.User, error) {
	u := new(user)
	err := pg.bun.NewSelect().Model(u).Where("uid = ?", uid).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.User{}, fmt.Errorf("user %s: %w", uid, chat.ErrNotFound)
	}
	if err != nil {
		return chat.User{}, fmt.Errorf("scan: %w", err)
	}
	return u.ChatUser(), nil
}

// UpsertUser creates the profile of uid or updates its pair code.
func (pg *Postgres) UpsertUser(ctx context.Context, uid, pairCode string) (chat.User, error) {
	u := &user{UID: uid, PairCode: pairCode}
	_, err := pg.bun.NewInsert().
		Model(u).
		On("CONFLICT (uid) DO UPDATE").
		Set("pair_code = EXCLUDED.pair_code").
		Exec(ctx)
	if err != nil {
		return chat.User{}, fmt.Errorf("upsert: %w", err)
	}
	return u.ChatUser(), nil
}

// ListMessages returns the messages of a pair ordered by timestamp, oldest
// first. Messages whose id is in excludeMsgIDs are skipped.
func (pg *Postgres) ListMessages(ctx context.Context, pairCode string, excludeMsgIDs ...string) ([]chat.Document, error) {
	var msgs []message
	q := pg.bun.NewSelect().
		Model(&msgs).
		Where("pair_code = ?", pairCode).
		OrderExpr("? ASC, id ASC", bun.Ident("timestamp"))

	if len(excludeMsgIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(excludeMsgIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]chat.Document, len(msgs))
	for i, m := range msgs {
		out[i] = m.Document()
	}

	return out, nil
}

// InsertMessage inserts a message of a pair. A zero timestamp is filled in by
// the database clock. The returned message holds auto generated fields, such
// as the message id.
func (pg *Postgres) InsertMessage(ctx context.Context, pairCode string, msg chat.Message) (chat.Message, error) {
	m := &message{
		PairCode:  pairCode,
		Text:      msg.Text,
		Sender:    msg.Sender,
		Timestamp: msg.Timestamp,
	}
	if _, err := pg.bun.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return chat.Message{}, fmt.Errorf("insert: %w", err)
	}
	return m.ChatMessage(), nil
}
