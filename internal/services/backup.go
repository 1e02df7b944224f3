package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tech-entry-bot/config"
	"tech-entry-bot/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BackupService copies the workbook file to S3 so a corrupted or lost
// spreadsheet can be restored from the latest snapshot.
type BackupService struct {
	s3Client *s3.S3
	config   *config.S3Config
}

func NewBackupService(config *config.S3Config) (*BackupService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:    aws.String(config.ServiceUrl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %v", err)
	}

	return &BackupService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// BackupWorkbook uploads the workbook at path under a timestamped key and
// returns the object URL.
func (s *BackupService) BackupWorkbook(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read workbook: %v", err)
	}

	key := fmt.Sprintf("backups/%s-%s", time.Now().UTC().Format("20060102T150405Z"), filepath.Base(path))

	utils.LogInfo("Uploading workbook backup to S3: %s", key)

	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(workbookContentType),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return "", fmt.Errorf("failed to upload backup to S3: %v", err)
	}

	fileUrl := fmt.Sprintf("%s/%s", s.config.BucketUrl, key)
	utils.LogInfo("Backup uploaded: %s", fileUrl)

	return fileUrl, nil
}
