package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFactory_RejectsBadBaseUrl(t *testing.T) {
	for _, baseUrl := range []string{"", "hereisdata.com", "://nope"} {
		_, err := ClientFactory(baseUrl, "key", time.Second)
		assert.Error(t, err, baseUrl)
	}
}

func TestClientHost_RequestJoinsBasePathAndHeaders(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := ClientFactory(server.URL+"/proxy", "secret", time.Second)
	require.NoError(t, err)

	endpoint := &url.URL{Path: "api/thing", RawQuery: "a=1"}
	res, err := client.Connection.Request(context.Background(), endpoint, http.Header{"X-Api-Key": {"secret"}})
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "/proxy/api/thing", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "a=1", gotQuery)
}

func TestClientHost_RequestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := ClientFactory(server.URL, "key", 50*time.Millisecond)
	require.NoError(t, err)

	_, err = client.Connection.Request(context.Background(), &url.URL{Path: "slow"}, nil)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "expected a transport error, got %v", err)
}

func TestRemoteError_TruncatesBody(t *testing.T) {
	err := &RemoteError{StatusCode: 500, Status: "500 Internal Server Error", Body: strings.Repeat("x", 2000)}

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "remote error: 500 Internal Server Error: "))
	assert.Less(t, len(msg), 600)

	empty := &RemoteError{StatusCode: 503, Status: "503 Service Unavailable"}
	assert.Equal(t, "remote error: 503 Service Unavailable", empty.Error())
}

func TestMalformedResponseError_Unwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &MalformedResponseError{Reason: "decoding body", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "malformed response: decoding body: boom", err.Error())
}
