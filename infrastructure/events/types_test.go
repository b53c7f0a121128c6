package events_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/events"
)

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	a := events.NewEnvelope("fill_checkbox", "w-1", map[string]string{"selector": "input"})
	b := events.NewEnvelope("fill_checkbox", "w-1", nil)

	assert.NotEqual(t, uuid.Nil, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.False(t, a.Timestamp.IsZero())

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "fill_checkbox", decoded["type"])
	assert.Equal(t, "w-1", decoded["work_id"])
}
