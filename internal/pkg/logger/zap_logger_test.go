package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "Client registered", map[string]interface{}{"document_id": "abc"})
	l.Error("Hub", "Broadcast failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("Hub", "below file level", nil)
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}

	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "Client registered", entries[0]["message"])
	assert.Equal(t, "Hub", entries[0]["module"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Warn("Test", "ignored", nil)
	assert.NoError(t, l.Sync())
}
