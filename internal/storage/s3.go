package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 client this backend calls.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 stores files as bucket objects. The object ETag is the version token;
// writes are made conditional with If-Match / If-None-Match so a stale
// token fails instead of clobbering a concurrent writer.
type S3 struct {
	client S3API
	bucket string
}

func NewS3(client S3API, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

func (b *S3) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get %s: %w: %v", path, ErrUnavailable, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return content, etagToken(out.ETag), nil
}

func (b *S3) PutFile(ctx context.Context, path string, content []byte, token string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(content),
	}
	if token == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(token)
	}

	out, err := b.client.PutObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return "", ErrConflict
			}
		}
		return "", fmt.Errorf("put %s: %w: %v", path, ErrUnavailable, err)
	}
	return etagToken(out.ETag), nil
}

func (b *S3) ListDirs(ctx context.Context, path string) ([]string, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %v", path, ErrUnavailable, err)
	}

	var dirs []string
	for _, cp := range out.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
		if name != "" {
			dirs = append(dirs, name)
		}
	}
	return dirs, nil
}

func etagToken(etag *string) string {
	return strings.Trim(aws.ToString(etag), `"`)
}
