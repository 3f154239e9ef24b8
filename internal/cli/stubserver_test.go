package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/logger"
)

func TestServeStub_ServesAndShutsDown(t *testing.T) {
	_, _ = logger.Setup(logger.Options{Out: io.Discard})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- ServeStub(ctx, ln, StubOptions{Seed: 1, Users: 10, Orgs: 2}, &out)
	}()

	url := "http://" + ln.Addr().String() + stubBasePath + "/metrics"
	var res *http.Response
	require.Eventually(t, func() bool {
		res, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"totalUsers":10`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(stubShutdownTimeout):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, out.String(), "Stub API listening on http://"+ln.Addr().String()+"/api/admin")
}

func TestStubHandler_TokenAndFailures(t *testing.T) {
	_, _ = logger.Setup(logger.Options{Out: io.Discard})
	h := StubHandler(StubOptions{Seed: 2, Users: 3, Orgs: 1, Token: "t0ken", FailEvery: 2})

	get := func(auth string) int {
		req, _ := http.NewRequest(http.MethodGet, stubBasePath+"/metrics", nil)
		if auth != "" {
			req.Header.Set("Authorization", "Bearer "+auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, http.StatusOK, get("t0ken"))
	assert.Equal(t, http.StatusServiceUnavailable, get("t0ken"), "every second metrics call fails")
	assert.Equal(t, http.StatusOK, get("t0ken"))
}
