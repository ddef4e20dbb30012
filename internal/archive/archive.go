// Package archive uploads successfully ingested source documents to object
// storage for later retrieval.
package archive

import (
	"DocuGraph/pkg/logger"
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

// MinIOArchiver stores source files in a MinIO bucket, keyed by base name.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinIOArchiver creates an archiver writing into the given bucket.
func NewMinIOArchiver(client *minio.Client, bucket string, log *logger.Logger) *MinIOArchiver {
	return &MinIOArchiver{client: client, bucket: bucket, log: log}
}

// Archive uploads the file. Re-archiving the same base name overwrites the
// previous object.
func (a *MinIOArchiver) Archive(ctx context.Context, filePath string) error {
	objectName := filepath.Base(filePath)
	_, err := a.client.FPutObject(ctx, a.bucket, objectName, filePath, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	a.log.WithFile(filePath).Debug("source document archived")
	return nil
}
