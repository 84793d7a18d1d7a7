package acrcloud

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/tuneid/internal/config"
	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/logger"
)

const successResponse = `{
	"status": {"code": 0, "msg": "Success", "version": "1.0"},
	"metadata": {
		"music": [{
			"title": "Song A",
			"score": 92,
			"artists": [{"name": "Artist A"}],
			"album": {"name": "Album A"},
			"genres": [{"name": "Pop"}]
		}]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := config.Credentials{AccessKey: "key", AccessSecret: "secret", Host: "identify-test.example.com"}
	log := logger.New(logger.Config{Writer: testWriter{t}, Format: logger.FormatJSON})

	client := New(creds, 5*time.Second, log)
	client.baseURL = server.URL
	client.ratePause = 0

	return client, server
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestClient_Identify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "successful match",
			response: successResponse,
		},
		{
			name:     "no result",
			response: `{"status": {"code": 1001, "msg": "No result"}}`,
			wantErr:  errs.ErrNoMatch,
		},
		{
			name:     "empty music list",
			response: `{"status": {"code": 0, "msg": "Success"}, "metadata": {"music": []}}`,
			wantErr:  errs.ErrNoMatch,
		},
		{
			name:     "fingerprint generation failed",
			response: `{"status": {"code": 2004, "msg": "Can't generate fingerprint"}}`,
			wantErr:  errs.ErrNoMatch,
		},
		{
			name:     "invalid access key",
			response: `{"status": {"code": 3001, "msg": "Missing/Invalid Access Key"}}`,
			wantErr:  errs.ErrAuth,
		},
		{
			name:     "invalid signature",
			response: `{"status": {"code": 3014, "msg": "Invalid Signature"}}`,
			wantErr:  errs.ErrAuth,
		},
		{
			name:     "quota exceeded",
			response: `{"status": {"code": 3003, "msg": "Limit exceeded"}}`,
			wantErr:  errs.ErrRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.response)
			})

			match, err := client.Identify(context.Background(), []byte("mp3-bytes"), 3)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Song A", match.Track.Title)
			assert.Equal(t, "Artist A", match.Track.Artist)
			assert.Equal(t, "Album A", match.Track.Album)
			assert.Equal(t, "Pop", match.Track.Genre)
			assert.Equal(t, 92, match.Track.Score)
			assert.Equal(t, 3, match.Segment)
		})
	}
}

func TestClient_IdentifyFormFields(t *testing.T) {
	sample := []byte("fake-mp3-sample")

	var gotFields map[string]string
	var gotSampleLen int

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotFields = map[string]string{}
		for _, key := range []string{"access_key", "sample_bytes", "timestamp", "signature", "data_type", "signature_version"} {
			gotFields[key] = r.FormValue(key)
		}

		file, _, err := r.FormFile("sample")
		require.NoError(t, err)
		defer file.Close()
		buf := make([]byte, len(sample)+1)
		n, _ := file.Read(buf)
		gotSampleLen = n

		fmt.Fprint(w, successResponse)
	})
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := client.Identify(context.Background(), sample, 1)
	require.NoError(t, err)

	assert.Equal(t, "key", gotFields["access_key"])
	assert.Equal(t, "15", gotFields["sample_bytes"])
	assert.Equal(t, "1700000000", gotFields["timestamp"])
	assert.Equal(t, "audio", gotFields["data_type"])
	assert.Equal(t, "1", gotFields["signature_version"])
	assert.Equal(t, Sign("key", "secret", "1700000000"), gotFields["signature"])
	assert.Equal(t, len(sample), gotSampleLen)
}

func TestClient_IdentifyRetriesRateLimit(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			fmt.Fprint(w, `{"status": {"code": 3003, "msg": "Limit exceeded"}}`)
			return
		}
		fmt.Fprint(w, successResponse)
	})

	match, err := client.Identify(context.Background(), []byte("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "Song A", match.Track.Title)
}

func TestClient_IdentifyRateLimitExhausted(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"status": {"code": 3015, "msg": "QpS limit exceeded"}}`)
	})

	_, err := client.Identify(context.Background(), []byte("x"), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRateLimit)
	assert.Equal(t, 3, calls) // 1 attempt + 2 retries
}

func TestClient_IdentifyAuthIsNotRetried(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"status": {"code": 3014, "msg": "Invalid Signature"}}`)
	})

	_, err := client.Identify(context.Background(), []byte("x"), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestSign(t *testing.T) {
	sig := Sign("access-key", "access-secret", "1700000000")

	// Deterministic for fixed inputs.
	assert.Equal(t, sig, Sign("access-key", "access-secret", "1700000000"))

	// A valid base64-encoded HMAC-SHA1 digest is 20 bytes.
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 20)

	// Any input change must change the signature.
	assert.NotEqual(t, sig, Sign("access-key", "other-secret", "1700000000"))
	assert.NotEqual(t, sig, Sign("other-key", "access-secret", "1700000000"))
	assert.NotEqual(t, sig, Sign("access-key", "access-secret", "1700000001"))
}
