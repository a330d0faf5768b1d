package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mcorbin/vigil/pkg/history"
)

type historyRecord struct {
	Key       string    `db:"key"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// WriteRecord upserts the serialized history for a key.
func (d *Database) WriteRecord(ctx context.Context, key string, data []byte) error {
	record := historyRecord{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := d.db.NamedExecContext(ctx, "INSERT INTO history_record (key, data, updated_at) VALUES (:key, :data, :updated_at) ON CONFLICT (key) DO UPDATE SET data=:data, updated_at=:updated_at", record)
	if err != nil {
		return fmt.Errorf("fail to write history record %s: %w", key, err)
	}
	return nil
}

func (d *Database) ReadRecord(ctx context.Context, key string) ([]byte, error) {
	record := historyRecord{}
	err := d.db.GetContext(ctx, &record, "SELECT history_record.key, history_record.data, history_record.updated_at FROM history_record WHERE key=$1", key)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("fail to read history record %s: %w", key, err)
		}
		return nil, history.ErrRecordNotFound
	}
	return record.Data, nil
}
