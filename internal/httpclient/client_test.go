package httpclient

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://monitor.example.test/api/alerts"

func newMockedClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c := New(cfg)
	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultTimeout, c.defaultTimeout)
	assert.Equal(t, defaultUserAgent, c.userAgent)

	c = New(Config{Timeout: 3 * time.Second, UserAgent: "probe/1.0"})
	assert.Equal(t, 3*time.Second, c.defaultTimeout)
	assert.Equal(t, "probe/1.0", c.userAgent)
}

func TestPostJSON(t *testing.T) {
	c := newMockedClient(t, Config{})

	var (
		header http.Header
		body   string
	)
	httpmock.RegisterResponder(http.MethodPost, testURL,
		func(req *http.Request) (*http.Response, error) {
			header = req.Header.Clone()
			data, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			body = string(data)
			return httpmock.NewStringResponse(http.StatusAccepted, "queued"), nil
		})

	resp, err := c.PostJSON(t.Context(), testURL, map[string]int{"alert_id": 9}, map[string]string{"X-Delivery-ID": "abc"})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "queued", string(data), "body stays readable after Do returns")

	assert.JSONEq(t, `{"alert_id":9}`, body)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, "abc", header.Get("X-Delivery-ID"))
	assert.Equal(t, defaultUserAgent, header.Get("User-Agent"))
}

func TestPostJSONRejectsUnencodableBody(t *testing.T) {
	c := New(Config{})
	_, err := c.PostJSON(t.Context(), testURL, make(chan int), nil)
	require.Error(t, err)
}

func TestDoAppliesDefaultDeadline(t *testing.T) {
	c := newMockedClient(t, Config{Timeout: time.Minute})

	var deadline time.Time
	httpmock.RegisterResponder(http.MethodGet, testURL,
		func(req *http.Request) (*http.Response, error) {
			deadline, _ = req.Context().Deadline()
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, testURL, http.NoBody)
	require.NoError(t, err)

	before := time.Now()
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.False(t, deadline.IsZero())
	assert.WithinDuration(t, before.Add(time.Minute), deadline, 5*time.Second)
}

func TestDoKeepsCallerDeadline(t *testing.T) {
	c := newMockedClient(t, Config{Timeout: time.Hour})

	var deadline time.Time
	httpmock.RegisterResponder(http.MethodGet, testURL,
		func(req *http.Request) (*http.Response, error) {
			deadline, _ = req.Context().Deadline()
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	want, _ := ctx.Deadline()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, http.NoBody)
	require.NoError(t, err)
	resp, err := c.Do(ctx, req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, want, deadline)
}

func TestAfterResponseHook(t *testing.T) {
	c := newMockedClient(t, Config{})
	httpmock.RegisterResponder(http.MethodGet, testURL,
		httpmock.NewStringResponder(http.StatusTeapot, ""))

	var (
		status int
		calls  int
	)
	c.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error, _ time.Duration) {
		calls++
		if err == nil {
			status = resp.StatusCode
		}
	})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, testURL, http.NoBody)
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusTeapot, status)
}

func TestDoNilRequest(t *testing.T) {
	_, err := New(Config{}).Do(t.Context(), nil)
	require.Error(t, err)
}
