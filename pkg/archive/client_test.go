package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saafetch/pkg/config"
	errs "saafetch/pkg/errors"
	"saafetch/pkg/logger"
	"saafetch/pkg/retry"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func fastRetry(attempts int) *retry.Config {
	return &retry.Config{
		MaxAttempts: attempts,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
	}
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(DefaultEndpoints(), 30*time.Second, log)

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, config.DefaultUserAgent, client.headers["User-Agent"])
	assert.Equal(t, DefaultEndpoints(), client.Endpoints())
	assert.Equal(t, 1, client.retry.MaxAttempts)
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Archive.BaseURL = "http://archive.test"
	cfg.Archive.Headers = map[string]string{"Accept-Language": "nl"}

	client := NewClientFromConfig(cfg, nil, logger.NewNopLogger())

	assert.Equal(t, "http://archive.test", client.Endpoints().BaseURL)
	assert.Equal(t, "nl", client.headers["Accept-Language"])
	assert.Equal(t, cfg.Retry.MaxAttempts, client.retry.MaxAttempts)
	assert.NotNil(t, client.limiter)
}

func TestFetchDescriptorSendsHeaders(t *testing.T) {
	var gotUA, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Write([]byte(readyDescriptor))
	}))
	defer server.Close()

	client := NewClient(ForServer(server.URL), 5*time.Second, logger.NewNopLogger())
	body, err := client.FetchDescriptor(context.Background(), "KLAC1")

	require.NoError(t, err)
	assert.Equal(t, readyDescriptor, string(body))
	assert.Equal(t, config.DefaultUserAgent, gotUA)
	assert.Equal(t, "/api/download_info/0/KLAC1.xml", gotPath)
}

func TestStatusCheckedBeforeBody(t *testing.T) {
	// a 404 page that happens to contain a classification marker
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page unavailable"))
	}))
	defer server.Close()

	client := NewClient(ForServer(server.URL), 5*time.Second, logger.NewNopLogger())
	body, err := client.FetchDescriptor(context.Background(), "KLAC1")

	require.Error(t, err)
	assert.Nil(t, body)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNotFound, apiErr.Type)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestTransientErrorsAreRetried(t *testing.T) {
	var calls int32
	hc := &http.Client{Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			return nil, errors.New("connection reset by peer")
		case 2:
			return newResponse(http.StatusServiceUnavailable, ""), nil
		default:
			return newResponse(http.StatusOK, "%PDF-1.4"), nil
		}
	}}}

	client := NewClient(DefaultEndpoints(), time.Second, logger.NewNopLogger(),
		WithHTTPClient(hc), WithRetry(fastRetry(3)))

	data, err := client.Download(context.Background(), "https://archief.amsterdam/high/KLAC1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	hc := &http.Client{Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return newResponse(http.StatusForbidden, ""), nil
	}}}

	client := NewClient(DefaultEndpoints(), time.Second, logger.NewNopLogger(),
		WithHTTPClient(hc), WithRetry(fastRetry(3)))

	_, err := client.FetchDescriptor(context.Background(), "KLAC1")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueDownload(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("queued"))
	}))
	defer server.Close()

	client := NewClient(ForServer(server.URL), 5*time.Second, logger.NewNopLogger())
	require.NoError(t, client.QueueDownload(context.Background(), "KLAC2"))
	assert.Equal(t, "/api/queue_download/0/KLAC2.xml", gotPath)
}

func TestResolveHighres(t *testing.T) {
	client := NewClient(Endpoints{BaseURL: "http://archive.test"}, time.Second, logger.NewNopLogger())

	got, err := client.ResolveHighres([]byte(readyDescriptor))
	require.NoError(t, err)
	assert.Equal(t, "http://archive.test/high/KLAC1.pdf", got)

	_, err = client.ResolveHighres([]byte(`<download_info/>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoHighres))

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(ForServer(server.URL), 10*time.Second, logger.NewNopLogger(), WithRetry(fastRetry(3)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchDescriptor(ctx, "KLAC1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRequestsAreLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client := NewClient(ForServer(server.URL), time.Second, log)
	_, _ = client.FetchDescriptor(context.Background(), "KLAC1")

	assert.True(t, log.HasMessage("Archive request server error"))
}
