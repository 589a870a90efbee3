// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pnuchat/internal/answer"
)

func newTestServer(mode Mode) *Server {
	return New(Config{Mode: mode, Logger: zerolog.Nop()})
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.Chat(c))
	return rec
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestChat_Modes(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		wantStatus int
		wantAnswer string
		hasAnswer  bool
	}{
		{"echo", ModeEcho, http.StatusOK, "Hello", true},
		{"canned", ModeCanned, http.StatusOK, DefaultCannedAnswer, true},
		{"fail", ModeFail, http.StatusInternalServerError, "", false},
		{"malformed", ModeMalformed, http.StatusOK, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postChat(t, newTestServer(tc.mode), `{"query":"  Hello "}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			got, ok := body["answer"]
			assert.Equal(t, tc.hasAnswer, ok)
			if tc.hasAnswer {
				assert.Equal(t, tc.wantAnswer, got)
			}
		})
	}
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing query", `{}`, http.StatusUnprocessableEntity},
		{"null query", `{"query":null}`, http.StatusUnprocessableEntity},
		{"blank query", `{"query":"   "}`, http.StatusBadRequest},
		{"broken json", `{"query":`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(ModeEcho)
			rec := postChat(t, s, tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), "detail")
			assert.EqualValues(t, 1, s.Requests())
		})
	}
}

func TestChat_CustomCannedAnswer(t *testing.T) {
	s := New(Config{Mode: ModeCanned, CannedAnswer: "부산대학교", Logger: zerolog.Nop()})
	rec := postChat(t, s, `{"query":"어디?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"부산대학교"}`, rec.Body.String())
}

func TestChat_DelayHonorsCancel(t *testing.T) {
	s := New(Config{Mode: ModeEcho, Delay: time.Hour, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"x"}`)).WithContext(ctx)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := s.Chat(c)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealth(t *testing.T) {
	s := newTestServer(ModeCanned)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, s.Health(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","mode":"canned"}`, rec.Body.String())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":          ModeEcho,
		"echo":      ModeEcho,
		" Canned ":  ModeCanned,
		"FAIL":      ModeFail,
		"malformed": ModeMalformed,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("teapot")
	assert.Error(t, err)
}

// =============================================================================
// END-TO-END WITH THE HTTP ANSWERER
// =============================================================================

func TestServer_WithAnswerClient(t *testing.T) {
	tests := []struct {
		mode     Mode
		wantKind answer.Kind
		want     string
	}{
		{ModeEcho, answer.KindNone, "Ping"},
		{ModeCanned, answer.KindNone, DefaultCannedAnswer},
		{ModeFail, answer.KindServer, ""},
		{ModeMalformed, answer.KindDecode, ""},
	}

	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			ts := httptest.NewServer(newTestServer(tc.mode).Handler())
			defer ts.Close()

			client := answer.NewClientWithConfig(&answer.ClientConfig{URL: ts.URL + "/chat", EmptyIsFailure: true})
			got, err := client.Answer(context.Background(), "Ping")

			assert.Equal(t, tc.wantKind, answer.KindOf(err))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServer_RateLimit(t *testing.T) {
	s := New(Config{Mode: ModeEcho, RateLimit: 0.001, Logger: zerolog.Nop()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	client := answer.NewClientWithConfig(&answer.ClientConfig{URL: ts.URL + "/chat"})

	got, err := client.Answer(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	_, err = client.Answer(context.Background(), "second")
	var e *answer.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, answer.KindServer, e.Kind)
	assert.Equal(t, http.StatusTooManyRequests, e.Status)
	assert.EqualValues(t, 1, s.Requests(), "rejected requests never reach the handler")
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := httptest.NewServer(newTestServer(ModeEcho).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := newTestServer(ModeEcho)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := answer.NewClientWithConfig(&answer.ClientConfig{URL: "http://" + ln.Addr().String() + "/chat"})
	require.Eventually(t, func() bool {
		got, err := client.Answer(context.Background(), "안녕")
		return err == nil && got == "안녕"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_BadAddr(t *testing.T) {
	s := New(Config{Addr: "not-an-address", Logger: zerolog.Nop()})
	err := s.Run(context.Background())
	assert.Error(t, err)
}
