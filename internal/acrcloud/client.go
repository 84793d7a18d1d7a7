package acrcloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/ytget/tuneid/internal/config"
	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/logger"
	"github.com/ytget/tuneid/internal/model"
	"github.com/ytget/tuneid/internal/ratelimit"
)

const (
	// Identify endpoint and signing constants, fixed by the vendor.
	identifyURI      = "/v1/identify"
	dataType         = "audio"
	signatureVersion = "1"

	// Rate limit: free-tier identify quota is strict, keep uploads at
	// 1 request per second with a small burst.
	defaultRPS   = 1.0
	defaultBurst = 3

	// Quota-exceeded responses are retried a bounded number of times
	// after a pause before the error becomes fatal.
	defaultRateRetries = 2
	defaultRatePause   = 5 * time.Second
)

// Vendor status codes in the identify response envelope.
const (
	codeSuccess          = 0
	codeNoResult         = 1001
	codeNoFingerprint    = 2004
	codeInvalidAccessKey = 3001
	codeLimitExceeded    = 3003
	codeInvalidSignature = 3014
	codeQPSExceeded      = 3015
)

// Client is a rate-limited ACRCloud identify client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	log     *logger.Logger
	creds   config.Credentials

	baseURL     string // overridable in tests
	rateRetries int
	ratePause   time.Duration
	now         func() time.Time
}

// New creates a new identify client for the given credentials.
func New(creds config.Credentials, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:        &http.Client{Timeout: timeout},
		limiter:     ratelimit.New(defaultRPS, defaultBurst),
		log:         log,
		creds:       creds,
		baseURL:     "https://" + creds.Host,
		rateRetries: defaultRateRetries,
		ratePause:   defaultRatePause,
		now:         time.Now,
	}
}

// response is the identify JSON envelope.
type response struct {
	Status struct {
		Code    int    `json:"code"`
		Msg     string `json:"msg"`
		Version string `json:"version"`
	} `json:"status"`
	Metadata struct {
		Music []struct {
			Title   string `json:"title"`
			Score   int    `json:"score"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Genres []struct {
				Name string `json:"name"`
			} `json:"genres"`
		} `json:"music"`
	} `json:"metadata"`
}

// Identify uploads one audio sample and returns the recognized track.
// ErrNoMatch means a valid request with no song found; ErrAuth means the
// credentials were rejected and further uploads are pointless. Quota
// errors are retried with a pause before surfacing as ErrRateLimit.
func (c *Client) Identify(ctx context.Context, sample []byte, segmentIndex int) (*model.Match, error) {
	var lastErr error
	for attempt := 0; attempt <= c.rateRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("rate limited, pausing before retry", "attempt", attempt, "pause", c.ratePause)
			select {
			case <-time.After(c.ratePause):
			case <-ctx.Done():
				return nil, errs.RateLimit("cancelled while waiting out rate limit").WithCause(ctx.Err())
			}
		}

		match, err := c.identifyOnce(ctx, sample, segmentIndex)
		if err == nil {
			return match, nil
		}
		if !errs.Is(err, errs.ErrRateLimit) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) identifyOnce(ctx context.Context, sample []byte, segmentIndex int) (*model.Match, error) {
	if err := c.limiter.Wait(ctx, c.creds.Host); err != nil {
		return nil, errs.RateLimit("rate limit wait interrupted").WithCause(err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signature := Sign(c.creds.AccessKey, c.creds.AccessSecret, timestamp)

	body, contentType, err := buildSampleForm(sample, c.creds.AccessKey, timestamp, signature)
	if err != nil {
		return nil, errs.Internal("failed to encode sample upload").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+identifyURI, body)
	if err != nil {
		return nil, errs.Internal("failed to create identify request").WithCause(err)
	}
	req.Header.Set("Content-Type", contentType)

	c.log.Debug("uploading sample", "segment", segmentIndex, "bytes", len(sample))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Internal("identify request failed").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Internal("failed to read identify response").WithCause(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errs.Auth("recognition service rejected credentials")
	case http.StatusTooManyRequests:
		return nil, errs.RateLimit("recognition quota exceeded")
	default:
		return nil, errs.Internal(fmt.Sprintf("identify returned HTTP %d", resp.StatusCode))
	}

	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errs.Internal("invalid JSON in identify response").WithCause(err)
	}

	return c.toMatch(parsed, segmentIndex)
}

// toMatch maps the response envelope onto the error taxonomy and, on
// success, a Match.
func (c *Client) toMatch(parsed response, segmentIndex int) (*model.Match, error) {
	switch parsed.Status.Code {
	case codeSuccess:
	case codeNoResult, codeNoFingerprint:
		return nil, errs.NoMatch("no music found in this segment")
	case codeInvalidAccessKey, codeInvalidSignature:
		return nil, errs.Auth(fmt.Sprintf("credentials rejected: %s (code %d)", parsed.Status.Msg, parsed.Status.Code))
	case codeLimitExceeded, codeQPSExceeded:
		return nil, errs.RateLimit(fmt.Sprintf("quota exceeded: %s (code %d)", parsed.Status.Msg, parsed.Status.Code))
	default:
		return nil, errs.Internal(fmt.Sprintf("identify error: %s (code %d)", parsed.Status.Msg, parsed.Status.Code))
	}

	if len(parsed.Metadata.Music) == 0 {
		return nil, errs.NoMatch("no music found in this segment")
	}

	music := parsed.Metadata.Music[0]
	track := model.Track{
		Title: music.Title,
		Score: music.Score,
		Album: music.Album.Name,
	}
	if len(music.Artists) > 0 {
		track.Artist = music.Artists[0].Name
	}
	if len(music.Genres) > 0 {
		track.Genre = music.Genres[0].Name
	}

	return &model.Match{Track: track, Segment: segmentIndex}, nil
}

// Sign computes the identify request signature:
// base64(HMAC-SHA1(secret, "POST\n/v1/identify\n<key>\naudio\n1\n<timestamp>")).
func Sign(accessKey, accessSecret, timestamp string) string {
	stringToSign := http.MethodPost + "\n" +
		identifyURI + "\n" +
		accessKey + "\n" +
		dataType + "\n" +
		signatureVersion + "\n" +
		timestamp

	mac := hmac.New(sha1.New, []byte(accessSecret))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// buildSampleForm encodes the multipart identify request: the sample
// bytes plus the signed form fields the endpoint requires.
func buildSampleForm(sample []byte, accessKey, timestamp, signature string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("sample", "sample.mp3")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(sample); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"access_key":        accessKey,
		"sample_bytes":      strconv.Itoa(len(sample)),
		"timestamp":         timestamp,
		"signature":         signature,
		"data_type":         dataType,
		"signature_version": signatureVersion,
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
