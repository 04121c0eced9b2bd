// Package r2client stores database backups in Cloudflare R2 through the
// S3 API. Conditional writes back a lease so only one instance uploads at
// a time.
package r2client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("r2client: object not found")

// Config holds R2 connection settings.
type Config struct {
	Endpoint    string // https://<account>.r2.cloudflarestorage.com
	AccessKeyID string
	SecretKey   string
	Bucket      string
}

// Client reads and writes objects in one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New creates a client. Every Config field is required.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("r2client: endpoint, credentials and bucket are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2client: load aws config: %w", err)
	}

	return &Client{
		s3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}),
		bucket: cfg.Bucket,
	}, nil
}

// Put writes an object unconditionally and returns its ETag.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	etag, _, err := c.put(ctx, c.putInput(key, body, contentType))
	if err != nil {
		return "", fmt.Errorf("r2client: put %q: %w", key, err)
	}
	return etag, nil
}

// CreateIfAbsent writes an object only when the key is free.
// ok is false when the key already exists.
func (c *Client) CreateIfAbsent(ctx context.Context, key string, body io.Reader, contentType string) (etag string, ok bool, err error) {
	in := c.putInput(key, body, contentType)
	in.IfNoneMatch = aws.String("*")
	etag, ok, err = c.put(ctx, in)
	if err != nil {
		return "", false, fmt.Errorf("r2client: create %q: %w", key, err)
	}
	return etag, ok, nil
}

// ReplaceIfMatch overwrites an object only when its ETag is still etag.
// ok is false when someone else changed it first.
func (c *Client) ReplaceIfMatch(ctx context.Context, key string, body io.Reader, etag, contentType string) (newETag string, ok bool, err error) {
	in := c.putInput(key, body, contentType)
	in.IfMatch = aws.String(`"` + etag + `"`)
	newETag, ok, err = c.put(ctx, in)
	if err != nil {
		return "", false, fmt.Errorf("r2client: replace %q: %w", key, err)
	}
	return newETag, ok, nil
}

// Get opens an object. The caller closes the body.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("r2client: get %q: %w", key, err)
	}
	return out.Body, trimETag(out.ETag), nil
}

// Stat returns the ETag of an object without downloading it.
func (c *Client) Stat(ctx context.Context, key string) (string, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("r2client: stat %q: %w", key, err)
	}
	return trimETag(out.ETag), nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("r2client: delete %q: %w", key, err)
	}
	return nil
}

func (c *Client) putInput(key string, body io.Reader, contentType string) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	return in
}

// put reports ok=false, with no error, when a precondition failed.
func (c *Client) put(ctx context.Context, in *s3.PutObjectInput) (string, bool, error) {
	out, err := c.s3.PutObject(ctx, in)
	if err != nil {
		if isPreconditionFailed(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return trimETag(out.ETag), true, nil
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, `"`)
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}
	return httpStatus(err) == http.StatusPreconditionFailed
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return httpStatus(err) == http.StatusNotFound
}

func httpStatus(err error) int {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
