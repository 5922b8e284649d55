package s3storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/dharsanguruparan/cinebook/internal/config"
	"github.com/dharsanguruparan/cinebook/internal/storage"
)

func TestNew(t *testing.T) {
	s, err := New(config.S3{Endpoint: "localhost:9000", Bucket: "staged", Region: "us-east-1"})
	assert.NoError(t, err)
	assert.Equal(t, "staged", s.bucket)

	_, err = New(config.S3{Endpoint: "localhost:9000/staged"})
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	missing := fmt.Errorf("wrapped: %w", minio.ErrorResponse{Code: "NoSuchKey"})
	assert.True(t, errors.Is(mapError(missing), storage.ErrNotFound))

	other := minio.ErrorResponse{Code: "AccessDenied"}
	err := mapError(other)
	assert.False(t, errors.Is(err, storage.ErrNotFound))
	assert.Error(t, err)
}
