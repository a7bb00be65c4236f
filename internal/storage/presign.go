// Package storage hands out presigned upload URLs for the S3-compatible
// bucket holding applicant documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/ayopaul/ejidike-foundation-sub002/internal/config"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("uploads are not configured")

// ErrInvalidFilename rejects names with nothing usable left after sanitizing.
var ErrInvalidFilename = errors.New("invalid filename")

const maxFilenameLength = 128

// Upload is a presigned PUT the client performs directly against the bucket.
type Upload struct {
	Key       string      `json:"key"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Presigner signs upload URLs. A nil *Presigner is valid and reports
// ErrDisabled.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// NewPresigner builds a presigner from cfg. It returns nil, nil when uploads
// are disabled. Static credentials are used when configured, otherwise the
// default AWS credential chain.
func NewPresigner(ctx context.Context, cfg appconfig.StorageConfig) (*Presigner, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most self-hosted stores only speak path-style
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Enabled reports whether p can sign uploads.
func (p *Presigner) Enabled() bool { return p != nil }

// PresignUpload signs a PUT for a new object under userID's prefix.
func (p *Presigner) PresignUpload(ctx context.Context, userID, filename, contentType string) (*Upload, error) {
	if p == nil {
		return nil, ErrDisabled
	}
	key, err := ObjectKey(userID, filename)
	if err != nil {
		return nil, err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	issued := p.now()
	req, err := p.client.PresignPutObject(ctx, in, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		ExpiresAt: issued.Add(p.ttl).UTC(),
	}, nil
}

// ObjectKey returns uploads/<user-id>/<uuid>-<sanitized filename>.
func ObjectKey(userID, filename string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: missing user", ErrInvalidFilename)
	}
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return path.Join("uploads", userID, uuid.NewString()+"-"+name), nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// letters, digits, dot, dash and underscore with a dash.
func SanitizeFilename(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if len(out) > maxFilenameLength {
		out = out[len(out)-maxFilenameLength:]
	}
	return out
}
