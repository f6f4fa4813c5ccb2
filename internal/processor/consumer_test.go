package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleDropsMalformedMessage(t *testing.T) {
	c := &Consumer{}

	// Malformed payloads must be acked, not requeued forever.
	assert.True(t, c.handle(context.Background(), []byte("not json")))
	assert.True(t, c.handle(context.Background(), []byte(`{"candidate_id": 42}`)))
}
