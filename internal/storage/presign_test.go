package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ayopaul/ejidike-foundation-sub002/internal/config"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":                 "cv.pdf",
		"My CV (final).pdf":      "My-CV--final-.pdf",
		"../../etc/passwd":       "passwd",
		`C:\Users\ada\essay.doc`: "essay.doc",
		"..":                     "",
		"résumé.pdf":             "r-sum-.pdf",
		".hidden":                "hidden",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}

	long := strings.Repeat("a", 300) + ".pdf"
	assert.Len(t, SanitizeFilename(long), maxFilenameLength)
	assert.True(t, strings.HasSuffix(SanitizeFilename(long), ".pdf"))
}

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("user-1", "transcript.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/user-1/"))
	assert.True(t, strings.HasSuffix(key, "-transcript.pdf"))

	_, err = ObjectKey("user-1", "../")
	assert.ErrorIs(t, err, ErrInvalidFilename)
	_, err = ObjectKey("", "a.pdf")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestPresignUpload(t *testing.T) {
	ctx := context.Background()

	p, err := NewPresigner(ctx, appconfig.StorageConfig{
		Bucket:          "documents",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		PresignTTL:      10 * time.Minute,
	})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	up, err := p.PresignUpload(ctx, "user-1", "cv.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/documents/uploads/user-1/"), u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), up.ExpiresAt, 5*time.Second)
}

func TestPresignDisabled(t *testing.T) {
	p, err := NewPresigner(context.Background(), appconfig.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, p.Enabled())

	_, err = p.PresignUpload(context.Background(), "u", "a.pdf", "")
	assert.ErrorIs(t, err, ErrDisabled)
}
