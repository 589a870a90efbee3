// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestClient_Answer_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"answer":"Hi there"}`)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{URL: srv.URL + "/chat"})
	text, err := client.Answer(context.Background(), "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)
	assert.Equal(t, "Hello", got.Query)
}

func TestClient_Answer_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		emptyFails bool
		wantKind   Kind
		wantAnswer string
	}{
		{"server 500", http.StatusInternalServerError, `{"detail":"boom"}`, true, KindServer, ""},
		{"server 422", http.StatusUnprocessableEntity, `{"detail":[]}`, true, KindServer, ""},
		{"not json", http.StatusOK, `<html>oops</html>`, true, KindDecode, ""},
		{"missing answer", http.StatusOK, `{"result":"x"}`, true, KindDecode, ""},
		{"null answer", http.StatusOK, `{"answer":null}`, true, KindDecode, ""},
		{"wrong type", http.StatusOK, `{"answer":42}`, true, KindDecode, ""},
		{"empty answer fails", http.StatusOK, `{"answer":""}`, true, KindDecode, ""},
		{"empty answer allowed", http.StatusOK, `{"answer":""}`, false, KindNone, ""},
		{"created is success", http.StatusCreated, `{"answer":"ok"}`, true, KindNone, "ok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			client := NewClientWithConfig(&ClientConfig{URL: srv.URL, EmptyIsFailure: tc.emptyFails})
			text, err := client.Answer(context.Background(), "Ping")

			assert.Equal(t, tc.wantKind, KindOf(err))
			assert.Equal(t, tc.wantAnswer, text)
			if tc.wantKind == KindServer {
				var e *Error
				require.True(t, errors.As(err, &e))
				assert.Equal(t, tc.status, e.Status)
			}
		})
	}
}

func TestClient_Answer_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClientWithConfig(&ClientConfig{URL: url})
	_, err := client.Answer(context.Background(), "Ping")

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsServer(err))
	assert.False(t, IsDecode(err))
}

func TestClient_Answer_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClientWithConfig(&ClientConfig{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Answer(context.Background(), "Ping")

	assert.True(t, IsTransport(err))
}

func TestClient_Answer_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":"late"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClientWithConfig(&ClientConfig{URL: srv.URL}).Answer(ctx, "Ping")
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	assert.Equal(t, DefaultURL, NewClientWithConfig(nil).URL())
	assert.Equal(t, DefaultURL, NewClientWithConfig(&ClientConfig{}).URL())
	assert.Equal(t, DefaultURL, NewClient().URL())
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindServer, Message: "answer request failed", Status: 502}, "answer request failed (status 502)"},
		{&Error{Kind: KindDecode, Message: "failed to decode response", Cause: errors.New("eof")}, "failed to decode response: eof"},
		{&Error{Kind: KindDecode, Message: "response has no answer field"}, "response has no answer field"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", &Error{Kind: KindServer})

	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindServer, KindOf(wrapped))
	assert.Equal(t, KindTransport, KindOf(errors.New("dial tcp: refused")))
	assert.False(t, IsTransport(nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "server", KindServer.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "none", KindNone.String())
}

func TestAnswererFunc(t *testing.T) {
	var a Answerer = AnswererFunc(func(ctx context.Context, q string) (string, error) {
		return "re: " + q, nil
	})
	got, err := a.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "re: q", got)
}
