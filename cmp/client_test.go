package cmp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "key-1"
	testSecret = "secret-1"
	testICCID  = "89860000000000000001"
)

type recordedRequest struct {
	path    string
	body    map[string]any
	headers http.Header
	raw     []byte
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rec.path = r.URL.Path
		rec.headers = r.Header.Clone()
		rec.raw = raw
		rec.body = map[string]any{}
		_ = json.Unmarshal(raw, &rec.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, endpoint string) *cmp.Client {
	t.Helper()
	now := time.UnixMilli(1700000000000)
	c, err := cmp.New(cmp.Credentials{APIKey: testKey, APISecret: testSecret, Endpoint: endpoint}, cmp.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := cmp.New(cmp.Credentials{APISecret: testSecret})
		require.ErrorIs(t, err, errors.ErrMissingCredentials)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := cmp.New(cmp.Credentials{APIKey: testKey, APISecret: "  "})
		require.ErrorIs(t, err, errors.ErrMissingCredentials)
	})

	t.Run("default endpoint", func(t *testing.T) {
		c, err := cmp.New(cmp.Credentials{APIKey: testKey, APISecret: testSecret})
		require.NoError(t, err)
		require.Equal(t, cmp.DefaultEndpoint, c.Endpoint())
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		c, err := cmp.New(cmp.Credentials{APIKey: testKey, APISecret: testSecret, Endpoint: "https://api.example.com/"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com", c.Endpoint())
	})
}

func TestClient_Requests(t *testing.T) {
	ctx := context.Background()

	t.Run("device detail is signed", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{"code":200,"msg":"ok","data":{"iccid":"`+testICCID+`"}}`)
		resp, err := newClient(t, srv.URL).DeviceDetail(ctx, testICCID)
		require.NoError(t, err)
		require.True(t, resp.Success())
		require.True(t, resp.HasDataObject())

		require.Equal(t, "/openapi/v1/device/detail", rec.path)
		require.Equal(t, testICCID, rec.body["iccid"])
		require.Equal(t, testKey, rec.headers.Get(cmp.HeaderAPIKey))
		require.Equal(t, "1700000000000", rec.headers.Get(cmp.HeaderTimestamp))
		require.Equal(t, cmp.Sign(testSecret, testKey, "1700000000000", rec.raw), rec.headers.Get(cmp.HeaderSignature))
	})

	t.Run("list devices omits empty filters", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{"code":"200","data":{"total":0,"list":[]}}`)
		status := 6
		_, err := newClient(t, srv.URL).ListDevices(ctx, cmp.DeviceFilter{PageNum: 2, Status: &status})
		require.NoError(t, err)
		require.Equal(t, "/openapi/v1/device/list", rec.path)
		require.Equal(t, map[string]any{"pageNum": float64(2), "status": float64(6)}, rec.body)
	})

	t.Run("usage and profiles paths", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{"code":200,"data":{}}`)
		c := newClient(t, srv.URL)

		_, err := c.DeviceUsage(ctx, testICCID, "202301")
		require.NoError(t, err)
		require.Equal(t, "/openapi/v1/device/usage", rec.path)
		require.Equal(t, "202301", rec.body["month"])

		_, err = c.ListEmbeddedProfiles(ctx, cmp.ProfileFilter{ICCID: testICCID})
		require.NoError(t, err)
		require.Equal(t, "/openapi/v1/esim/profile/list", rec.path)
	})

	t.Run("non 2xx is an upstream failure", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusBadGateway, `bad gateway`)
		_, err := newClient(t, srv.URL).DeviceDetail(ctx, testICCID)
		require.ErrorIs(t, err, errors.ErrUpstreamFailure)
		require.Contains(t, err.Error(), "HTTP 502")
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `<html>`)
		_, err := newClient(t, srv.URL).DeviceDetail(ctx, testICCID)
		require.ErrorIs(t, err, errors.ErrUpstreamFailure)
	})

	t.Run("network failure", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{}`)
		c := newClient(t, srv.URL)
		srv.Close()
		_, err := c.DeviceDetail(ctx, testICCID)
		require.ErrorIs(t, err, errors.ErrUpstreamFailure)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{}`)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newClient(t, srv.URL).DeviceDetail(cctx, testICCID)
		require.ErrorIs(t, err, errors.ErrUpstreamFailure)
		require.ErrorIs(t, err, context.Canceled)
	})
}
