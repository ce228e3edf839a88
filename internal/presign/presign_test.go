package presign

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingBucket)
}

func TestRandomKey(t *testing.T) {
	key := RandomKey("uploads")
	assert.Regexp(t, regexp.MustCompile(`^uploads/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}$`), key)
	assert.NotEqual(t, key, RandomKey("uploads"))
	assert.False(t, strings.HasPrefix(RandomKey(""), "/"))
}

func TestPresignPost(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	p, err := New(context.Background(), Config{
		Bucket:          "media",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	d, err := p.PresignPost(context.Background(), "avatars/me.png")
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	assert.Contains(t, d.URL, "127.0.0.1:9000")
	assert.Equal(t, "avatars/me.png", d.Fields["key"])
	assert.Greater(t, len(d.Fields), 1)

	generated, err := p.PresignPost(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Fields["key"])
}
