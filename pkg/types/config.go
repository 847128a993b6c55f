package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Storage backend selection: local, github, or s3
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	StorageRoot    string `envconfig:"STORAGE_ROOT" default:"data"`

	// GitHub contents API backend
	GitHubToken     string `envconfig:"GITHUB_TOKEN"`
	GitHubRepoOwner string `envconfig:"GITHUB_REPO_OWNER"`
	GitHubRepoName  string `envconfig:"GITHUB_REPO_NAME"`
	GitHubAPIURL    string `envconfig:"GITHUB_API_URL" default:"https://api.github.com"`

	// S3 backend
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Bound on read-modify-write retries for the shared index file
	IndexRetryLimit int `envconfig:"INDEX_RETRY_LIMIT" default:"5"`

	// Dashboard auth. Issuer must expose /.well-known/jwks.json
	IssuerURL string `envconfig:"ISSUER_URL"`

	// Filing fee payments
	StripeAPIKey string `envconfig:"STRIPE_API_KEY"`
}
