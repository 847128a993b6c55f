package main

import (
	"context"
	"fmt"

	"gaevic/internal/storage"
	"gaevic/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	switch c.StorageBackend {
	case "local":
		if c.StorageRoot == "" {
			return nil, fmt.Errorf("set STORAGE_ROOT for the local backend")
		}
	case "github":
		if c.GitHubToken == "" || c.GitHubRepoOwner == "" || c.GitHubRepoName == "" {
			return nil, fmt.Errorf("set GITHUB_TOKEN, GITHUB_REPO_OWNER, and GITHUB_REPO_NAME for the github backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			return nil, fmt.Errorf("set S3_BUCKET for the s3 backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}

func buildBackend(ctx context.Context, c *types.Config) (storage.Backend, error) {
	switch c.StorageBackend {
	case "local":
		return storage.NewLocal(c.StorageRoot), nil
	case "github":
		return storage.NewGitHub(c.GitHubAPIURL, c.GitHubToken, c.GitHubRepoOwner, c.GitHubRepoName), nil
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3(s3.NewFromConfig(awsConfig), c.S3Bucket), nil
	}
	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
}
