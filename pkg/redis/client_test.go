package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(Config{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(Config{Address: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = optionsFromConfig(Config{URL: "redis://:secret@cache:6380/1", Address: "ignored:1"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestKeyNamespacing(t *testing.T) {
	c := &Client{namespace: "pos"}
	assert.Equal(t, "pos:lock:invoice-dispatcher", c.Key("lock", "invoice-dispatcher"))
}
