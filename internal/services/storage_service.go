// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/config"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

// StorageService stores evidence blobs on S3, falling back to the local
// filesystem when no AWS credentials are configured. All caller-supplied path
// segments are sanitized so a stored key can never escape the storage root.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local filesystem storage for development
		if err := os.MkdirAll(cfg.Storage.LocalPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local storage root: %w", err)
		}
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// Store writes the blob under a unique key derived from suggestedPath and
// filename, and returns the stored key.
func (s *StorageService) Store(data []byte, filename, suggestedPath string) (string, error) {
	key, err := s.buildKey(filename, suggestedPath)
	if err != nil {
		return "", err
	}

	if s.s3Client != nil {
		_, err := s.s3Client.PutObject(&s3.PutObjectInput{
			Bucket:        aws.String(s.config.AWS.S3Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return key, nil
	}

	localPath := filepath.Join(s.config.Storage.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// Retrieve reads a previously stored blob.
func (s *StorageService) Retrieve(storedPath string) ([]byte, error) {
	key, err := sanitizeKey(storedPath)
	if err != nil {
		return nil, err
	}

	if s.s3Client != nil {
		out, err := s.s3Client.GetObject(&s3.GetObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch from S3: %w", err)
		}
		defer out.Body.Close()
		return io.ReadAll(out.Body)
	}

	data, err := os.ReadFile(filepath.Join(s.config.Storage.LocalPath, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, apperrors.NotFound("stored file %s not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Delete removes a stored blob.
func (s *StorageService) Delete(storedPath string) error {
	key, err := sanitizeKey(storedPath)
	if err != nil {
		return err
	}

	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete from S3: %w", err)
		}
		return nil
	}

	if err := os.Remove(filepath.Join(s.config.Storage.LocalPath, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Exists reports whether a stored blob is present.
func (s *StorageService) Exists(storedPath string) (bool, error) {
	key, err := sanitizeKey(storedPath)
	if err != nil {
		return false, err
	}

	if s.s3Client != nil {
		_, err := s.s3Client.HeadObject(&s3.HeadObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey) {
				return false, nil
			}
			return false, fmt.Errorf("failed to stat S3 object: %w", err)
		}
		return true, nil
	}

	_, err = os.Stat(filepath.Join(s.config.Storage.LocalPath, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return true, nil
}

func (s *StorageService) buildKey(filename, suggestedPath string) (string, error) {
	dir, err := sanitizeKey(suggestedPath)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	timestamp := time.Now().Format("20060102")
	suffix, err := utils.GenerateRandomString(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate storage key: %w", err)
	}
	name := fmt.Sprintf("%s_%s%s", timestamp, suffix, ext)

	return path.Join(dir, name), nil
}

// sanitizeKey normalizes a caller-supplied path and rejects anything that
// would resolve outside the storage root.
func sanitizeKey(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	clean := path.Clean("/" + p)
	clean = strings.TrimPrefix(clean, "/")

	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", apperrors.Validation("invalid storage path %q", p)
	}

	return clean, nil
}
