package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/logging"
	sc "github.com/dmitrijs2005/inventory/internal/server/config"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
	"github.com/google/uuid"
)

// ExportLinkValidity is how long the download link of an export stays valid.
const ExportLinkValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) error {
		_, err := c.PutObject(ctx, in, optFns...)
		return err
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportService writes JSON snapshots of the inventory to S3-compatible
// object storage.
type ExportService struct {
	repo   items.Repository
	config *sc.Config
	logger logging.Logger
	now    func() time.Time
}

func NewExportService(repo items.Repository, cfg *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		config: cfg,
		logger: logger.With("module", "export"),
		now:    time.Now,
	}
}

// ExportKey returns a fresh object key under exports/<year>/<month>/<day>/.
func ExportKey(d time.Time) string {
	return fmt.Sprintf("exports/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads every item as one JSON array and returns the object key
// with a presigned download URL.
func (s *ExportService) Export(ctx context.Context) (*models.ExportResult, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*models.Item{}
	}

	body, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 config: %v", common.ErrorPersistence, err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(s.now())

	err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 put: %v", common.ErrorPersistence, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ExportLinkValidity))
	if err != nil {
		return nil, fmt.Errorf("%w: s3 presign: %v", common.ErrorPersistence, err)
	}

	s.logger.Info(ctx, "inventory exported", "key", key, "count", len(all))
	return &models.ExportResult{Key: key, URL: req.URL, Count: len(all)}, nil
}
