package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gsweb/internal/logger"
	"gsweb/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/txprofiles", r.URL.Path)
		w.Write([]byte(`[{"range_start":999,"range_end":2000}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, logger.Nop())
	data, err := c.FetchProfiles(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"range_start":999,"range_end":2000}]`, string(data))
}

func TestFetchProfiles_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"range_start":`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, logger.Nop()).FetchProfiles(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchProfiles_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := New(srv.URL, 50*time.Millisecond, logger.Nop()).FetchProfiles(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchProfiles_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 200*time.Millisecond, logger.Nop()).FetchProfiles(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestReplaceProfiles(t *testing.T) {
	var got []models.TxProfile
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	want := []models.TxProfile{{RangeStart: 999, RangeEnd: 2000, GI: "long"}}
	require.NoError(t, New(srv.URL, time.Second, logger.Nop()).ReplaceProfiles(context.Background(), want))
	assert.Equal(t, want, got)
}

func TestReplaceProfiles_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"profile validation failed"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second, logger.Nop()).ReplaceProfiles(context.Background(), nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "profile validation failed", se.Message)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ping", r.URL.Path)
	}))
	defer srv.Close()
	assert.NoError(t, New(srv.URL, time.Second, logger.Nop()).Ping(context.Background()))
}
