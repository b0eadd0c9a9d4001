package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStatusJSON(t *testing.T) {
	raw, err := json.Marshal(NotificationStatusSent)
	require.NoError(t, err)
	assert.Equal(t, `"Sent"`, string(raw))

	var s NotificationStatus
	require.NoError(t, json.Unmarshal([]byte(`"Failed"`), &s))
	assert.Equal(t, NotificationStatusFailed, s)

	require.NoError(t, json.Unmarshal([]byte(`1`), &s))
	assert.Equal(t, NotificationStatusSent, s)
}

func TestNotificationStatusScan(t *testing.T) {
	var s NotificationStatus
	require.NoError(t, s.Scan(int64(2)))
	assert.Equal(t, NotificationStatusFailed, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, NotificationStatusPending, s)

	v, err := NotificationStatusSent.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
