package filestore_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcorbin/vigil/internal/filestore"
	"github.com/mcorbin/vigil/pkg/history"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestRecordRoundTrip(t *testing.T) {
	store, err := filestore.New(testLogger(), t.TempDir())
	assert.NoError(t, err)

	err = store.WriteRecord(context.Background(), "https___example_com", []byte(`[{"healthy":true}]`))
	assert.NoError(t, err)

	data, err := store.ReadRecord(context.Background(), "https___example_com")
	assert.NoError(t, err)
	assert.Equal(t, `[{"healthy":true}]`, string(data))

	// overwrite
	err = store.WriteRecord(context.Background(), "https___example_com", []byte(`[]`))
	assert.NoError(t, err)
	data, err = store.ReadRecord(context.Background(), "https___example_com")
	assert.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestReadMissingRecord(t *testing.T) {
	store, err := filestore.New(testLogger(), t.TempDir())
	assert.NoError(t, err)

	_, err = store.ReadRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, history.ErrRecordNotFound)
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "records")
	_, err := filestore.New(testLogger(), dir)
	assert.NoError(t, err)
	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
