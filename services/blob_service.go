package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	appconfig "chat-app/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BlobService 头像等二进制文件的 S3 存储
type BlobService struct {
	client *s3.Client
	bucket string
	region string
}

// 全局 blob 存储实例，未配置 AWS 时为 nil
var Blob *BlobService

// InitBlob 初始化 S3 客户端，缺少配置时跳过（头像上传将不可用）
func InitBlob() error {
	conf := appconfig.C
	if conf.AWSBucket == "" || conf.AWSRegion == "" {
		log.Println("Blob storage not configured, avatar upload disabled")
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.AWSRegion),
	}
	if conf.AWSAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AWSAccessKey, conf.AWSSecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	Blob = &BlobService{
		client: s3.NewFromConfig(cfg),
		bucket: conf.AWSBucket,
		region: conf.AWSRegion,
	}
	return nil
}

// Upload 上传文件并返回可访问的 URL。
// 上传中途失败时尽力清理，避免留下半可见对象。
func (b *BlobService) Upload(ctx context.Context, body io.Reader, size int64, filename, contentType string) (string, error) {
	key := uuid.New().String() + "-" + filename

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		_, _ = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key), nil
}

// Delete 根据 URL 删除对象
func (b *BlobService) Delete(ctx context.Context, blobURL string) error {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", b.bucket, b.region)
	if !strings.HasPrefix(blobURL, prefix) {
		return errors.Wrapf(ErrInvalidInput, "unexpected blob url %q", blobURL)
	}
	key := strings.TrimPrefix(blobURL, prefix)

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}
