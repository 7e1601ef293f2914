package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client used for evidence uploads.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// EvidenceStore archives the uploaded photograph next to its violation record.
type EvidenceStore struct {
	api    S3API
	bucket string
	now    func() time.Time
}

func NewEvidenceStore(api S3API, bucket string) *EvidenceStore {
	return &EvidenceStore{api: api, bucket: bucket, now: time.Now}
}

func (s *EvidenceStore) key(ext string) string {
	d := s.now().UTC()
	return fmt.Sprintf("violations/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Put uploads the image and returns its object key.
func (s *EvidenceStore) Put(ctx context.Context, image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	}
	key := s.key(ext)

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 PutObject %s/%s: %w", s.bucket, key, err)
	}
	return key, nil
}

// Delete removes an archived image whose record was never written.
func (s *EvidenceStore) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 DeleteObject %s/%s: %w", s.bucket, key, err)
	}
	return nil
}
