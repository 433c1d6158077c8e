package nats

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "documents.DOCUMENT_UPDATED", Subject("DOCUMENT_UPDATED"))
}

func TestOccurredAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := nats.Header{}
	h.Set(occurredAtHeader, at.Format(time.RFC3339Nano))

	assert.True(t, occurredAt(h).Equal(at))

	before := time.Now()
	assert.False(t, occurredAt(nil).Before(before), "missing header falls back to now")
}
