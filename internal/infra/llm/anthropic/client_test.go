package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/narrative"
)

func collect(t *testing.T, stream narrative.Stream) (string, error) {
	t.Helper()
	var out string
	for {
		part, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out += part
	}
}

func TestStreamTextCollectsDeltas(t *testing.T) {
	var got MessagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("x-api-key"))
		require.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		for _, text := range []string{"## 1. ", "Three Life Path"} {
			fmt.Fprintf(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", text)
		}
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL, time.Second)
	require.NoError(t, err)

	stream, err := client.StreamText(context.Background(), narrative.Request{Model: "claude-test", System: "sys", Prompt: "chart", MaxTokens: 12000})
	require.NoError(t, err)
	defer stream.Close()

	text, err := collect(t, stream)
	require.NoError(t, err)
	require.Equal(t, "## 1. Three Life Path", text)

	require.True(t, got.Stream)
	require.Equal(t, 12000, got.MaxTokens)
	require.Equal(t, "sys", got.System)
	require.Equal(t, []Message{{Role: "user", Content: "chart"}}, got.Messages)
}

func TestStreamTextErrors(t *testing.T) {
	t.Run("error event", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
		}))
		defer srv.Close()

		client, err := NewClient("key", srv.URL, time.Second)
		require.NoError(t, err)
		stream, err := client.StreamText(context.Background(), narrative.Request{Prompt: "x"})
		require.NoError(t, err)
		_, err = collect(t, stream)
		require.ErrorContains(t, err, "overloaded_error")
	})

	t.Run("truncated stream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"partial\"}}\n\n")
		}))
		defer srv.Close()

		client, err := NewClient("key", srv.URL, time.Second)
		require.NoError(t, err)
		stream, err := client.StreamText(context.Background(), narrative.Request{Prompt: "x"})
		require.NoError(t, err)
		_, err = collect(t, stream)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client, err := NewClient("key", srv.URL, time.Second)
		require.NoError(t, err)
		_, err = client.StreamText(context.Background(), narrative.Request{Prompt: "x"})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})
}
