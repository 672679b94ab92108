package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
)

func TestNotifyApprovedPostsMessage(t *testing.T) {
	var got message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(deliveryResponse{ID: "msg-1", Status: "queued"})
	}))
	defer server.Close()

	notifier := New(config.MailerConfig{
		Endpoint:    server.URL,
		APIKey:      "test-key",
		DefaultFrom: "noreply@warehouse-listing.local",
		Timeout:     5 * time.Second,
	}, nil)

	err := notifier.NotifyApproved(context.Background(), "owner@example.com", "Pune Cold Storage")
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", got.To)
	assert.Equal(t, "noreply@warehouse-listing.local", got.From)
	assert.Contains(t, got.Body, "Pune Cold Storage")
	assert.Contains(t, got.Body, "approved")
}

func TestNotifyRejectedIncludesComment(t *testing.T) {
	var got message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(deliveryResponse{ID: "msg-2", Status: "queued"})
	}))
	defer server.Close()

	notifier := New(config.MailerConfig{
		Endpoint:    server.URL,
		DefaultFrom: "noreply@warehouse-listing.local",
		Timeout:     5 * time.Second,
	}, nil)

	err := notifier.NotifyRejected(context.Background(), "owner@example.com", "Pune Cold Storage", "address is incomplete")
	require.NoError(t, err)

	assert.Contains(t, got.Body, "address is incomplete")
}

func TestSendReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := New(config.MailerConfig{
		Endpoint:    server.URL,
		DefaultFrom: "noreply@warehouse-listing.local",
		Timeout:     5 * time.Second,
	}, nil)

	err := notifier.NotifyApproved(context.Background(), "owner@example.com", "Pune Cold Storage")
	assert.Error(t, err)
}

func TestUnconfiguredMailerIsNoop(t *testing.T) {
	notifier := New(config.MailerConfig{}, nil)

	assert.NoError(t, notifier.NotifyApproved(context.Background(), "owner@example.com", "x"))
	assert.NoError(t, notifier.NotifyRejected(context.Background(), "owner@example.com", "x", "y"))
}
