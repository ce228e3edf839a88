package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singlebase/singlebase-go/internal/apierrors"
)

func TestDescriptorFromMap(t *testing.T) {
	d, err := DescriptorFromMap(map[string]any{
		"url":    "https://bucket.example.com",
		"fields": map[string]any{"key": "a/b.txt", "success_action_status": 201},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com", d.URL)
	assert.Equal(t, map[string]string{"key": "a/b.txt", "success_action_status": "201"}, d.Fields)

	d, err = DescriptorFromMap(map[string]any{"url": "https://bucket.example.com"})
	require.NoError(t, err)
	assert.Empty(t, d.Fields)
}

func TestDescriptorFromMap_Invalid(t *testing.T) {
	_, err := DescriptorFromMap(map[string]any{"fields": map[string]any{}})
	assert.ErrorIs(t, err, apierrors.ErrInvalidDescriptor)

	_, err = DescriptorFromMap(map[string]any{"url": "https://x", "fields": []any{"a"}})
	assert.ErrorIs(t, err, apierrors.ErrInvalidDescriptor)
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]byte(`{"url": "https://bucket.example.com", "fields": {"key": "k"}}`))
	require.NoError(t, err)
	assert.Equal(t, "k", d.Fields["key"])

	_, err = ParseDescriptor([]byte(`{`))
	assert.ErrorIs(t, err, apierrors.ErrInvalidDescriptor)
}
