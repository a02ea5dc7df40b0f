package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// uploadToGCS writes the file to the configured Cloud Storage bucket and
// returns the gs:// path recorded on the evidence row. Credentials come from
// the environment (GOOGLE_APPLICATION_CREDENTIALS or the runtime identity on
// Cloud Run).
func uploadToGCS(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", fmt.Errorf("GCS_BUCKET not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}
