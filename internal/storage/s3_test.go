package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"fittrack/workout-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "videos",
		UseSSL:          false,
	}
}

// Presigning is computed locally; no request reaches the endpoint.
func TestPresignedURLsArePathStyle(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), testS3Config(), zap.NewNop())
	require.NoError(t, err)

	upload, err := fs.GeneratePresignedUploadURL(context.Background(), "exercises/a/b/clip.mp4", "video/mp4", 0)
	require.NoError(t, err)
	u, err := url.Parse(upload)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/videos/exercises/a/b/clip.mp4", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	download, err := fs.GeneratePresignedDownloadURL(context.Background(), "exercises/a/b/clip.mp4", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(download, "http://localhost:9000/videos/exercises/a/b/clip.mp4?"))
	assert.Contains(t, download, "X-Amz-Expires=300")
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	cfg := testS3Config()
	cfg.BucketName = ""
	_, err := NewS3Storage(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestEndpointURL(t *testing.T) {
	cfg := testS3Config()
	assert.Equal(t, "http://localhost:9000", endpointURL(cfg))
	cfg.UseSSL = true
	assert.Equal(t, "https://localhost:9000", endpointURL(cfg))
	cfg.Endpoint = "https://nyc3.digitaloceanspaces.com"
	assert.Equal(t, "https://nyc3.digitaloceanspaces.com", endpointURL(cfg))
	cfg.Endpoint = ""
	assert.Equal(t, "", endpointURL(cfg))
}
