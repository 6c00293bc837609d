package forward

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward_RelaysStatusAndBody(t *testing.T) {
	var gotUserID, gotMethod, gotPath, gotQuery, gotBody, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get("X-User-ID")
		gotAuth = r.Header.Get("Authorization")
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	f := New(map[string]string{"mood": srv.URL + "/"}, nil, time.Second, logging.Nop{})
	resp := f.Forward(context.Background(), Request{
		Service:  "mood",
		Path:     "/moods",
		Query:    "limit=5",
		Method:   http.MethodPost,
		Body:     []byte(`{"mood":"happy"}`),
		Header:   http.Header{"Authorization": []string{"Bearer t"}},
		Identity: &models.Identity{ID: 42},
	})

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	assert.True(t, resp.OK())
	assert.Equal(t, "42", gotUserID)
	assert.Equal(t, "Bearer t", gotAuth)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/moods", gotPath)
	assert.Equal(t, "limit=5", gotQuery)
	assert.Equal(t, `{"mood":"happy"}`, gotBody)
}

func TestForward_StripsSpoofedUserID(t *testing.T) {
	var gotUserID []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Values("X-User-ID")
	}))
	defer srv.Close()

	f := New(map[string]string{"user": srv.URL}, nil, time.Second, logging.Nop{})
	resp := f.Forward(context.Background(), Request{
		Service: "user",
		Path:    "/users/1",
		Header:  http.Header{"X-User-Id": []string{"999"}},
	})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, gotUserID)
}

func TestForward_DownstreamErrorRelayedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such user"}`))
	}))
	defer srv.Close()

	f := New(map[string]string{"user": srv.URL}, nil, time.Second, logging.Nop{})
	resp := f.Forward(context.Background(), Request{Service: "user", Path: "/users/5"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.False(t, resp.OK())
	assert.Equal(t, "no such user", resp.ErrorMessage())
}

func TestForward_ConnectionRefusedIs503(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := New(map[string]string{"hug": url}, nil, time.Second, logging.Nop{})
	resp := f.Forward(context.Background(), Request{Service: "hug", Path: "/hugs", Method: http.MethodPost, Body: []byte(`{}`)})

	require.Equal(t, http.StatusServiceUnavailable, resp.Status)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, "Service unavailable", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestForward_TimeoutIs503(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := New(map[string]string{"mood": srv.URL}, nil, 50*time.Millisecond, logging.Nop{})
	start := time.Now()
	resp := f.Forward(context.Background(), Request{Service: "mood", Path: "/moods/feed"})

	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestForward_UnknownService(t *testing.T) {
	f := New(map[string]string{}, nil, 0, logging.Nop{})
	resp := f.Forward(context.Background(), Request{Service: "nope", Path: "/"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, DefaultTimeout, f.timeout)
}

func TestResponse_WriteAndJSON(t *testing.T) {
	r := &Response{Status: http.StatusTeapot, Header: http.Header{}, Body: []byte(`{"a":1}`)}
	w := httptest.NewRecorder()
	r.Write(w)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"a": float64(1)}, r.JSON())

	plain := &Response{Status: http.StatusOK, Body: []byte("hello")}
	assert.Equal(t, "hello", plain.JSON())
	assert.Equal(t, "Service returned error: OK", plain.ErrorMessage())
}
