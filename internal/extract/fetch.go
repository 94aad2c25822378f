package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

// ImageFetcher acquires image bytes from http(s), s3 and data URLs.
type ImageFetcher struct {
	http     *http.Client
	objects  ObjectGetter // nil when s3:// is not configured
	maxBytes int64
	timeout  time.Duration
	logger   *slog.Logger
}

var _ ImageSource = (*ImageFetcher)(nil)

func NewImageFetcher(cfg common.ImageConfig, objects ObjectGetter, logger *slog.Logger) *ImageFetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = constants.MaxImageBytesDefault
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageFetcher{
		http:     &http.Client{},
		objects:  objects,
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.FetchTimeout,
		logger:   logger,
	}
}

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func (f *ImageFetcher) WithHTTPClient(h *http.Client) *ImageFetcher {
	f.http = h
	return f
}

func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) (llm.Image, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return llm.Image{}, common.InvalidArgumentError("imageUrl must be an absolute URL")
	}

	var (
		data []byte
		name = u.Path
	)
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = f.fetchHTTP(ctx, u)
	case "s3":
		data, err = f.fetchS3(ctx, u)
	case "data":
		data, err = f.decodeDataURL(rawURL)
		name = ""
	default:
		return llm.Image{}, common.InvalidArgumentErrorf("unsupported imageUrl scheme %q", u.Scheme)
	}
	if err != nil {
		return llm.Image{}, err
	}
	if len(data) == 0 {
		return llm.Image{}, common.InvalidArgumentError("image is empty")
	}

	mt := llm.DetectImageMIME(data, name)
	common.LoggerFromContext(ctx, f.logger).Info("extract.fetch.ok",
		"scheme", u.Scheme,
		"bytes", len(data),
		"mime", mt,
	)
	return llm.Image{Data: data, MIMEType: mt}, nil
}

func (f *ImageFetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("invalid imageUrl: %v", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, common.UpstreamError("fetch image", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			f.logger.Warn("extract.fetch.body_close_error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, common.UpstreamError("fetch image", &llm.StatusError{StatusCode: resp.StatusCode, Body: string(snippet)})
	}
	if resp.ContentLength > f.maxBytes {
		return nil, f.tooLarge()
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, common.UpstreamError("read image", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, f.tooLarge()
	}
	return data, nil
}

func (f *ImageFetcher) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.objects == nil {
		return nil, common.InvalidArgumentError("s3:// image URLs are not enabled")
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, common.InvalidArgumentError("s3 imageUrl must look like s3://bucket/key")
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	data, _, err := f.objects.Get(ctx, bucket, key, f.maxBytes)
	return data, err
}

func (f *ImageFetcher) decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok || !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, common.InvalidArgumentError("data imageUrl must be base64 encoded")
	}
	// base64 grows by 4/3; reject before decoding
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > f.maxBytes+2 {
		return nil, f.tooLarge()
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, common.InvalidArgumentErrorf("data imageUrl: %v", err)
		}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, f.tooLarge()
	}
	return data, nil
}

func (f *ImageFetcher) tooLarge() error {
	return common.InvalidArgumentError(fmt.Sprintf("image exceeds %d bytes", f.maxBytes))
}
