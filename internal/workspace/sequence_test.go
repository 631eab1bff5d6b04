package workspace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrefix(t *testing.T) {
	cases := []struct {
		n        int
		expected string
	}{
		{0, "000_"},
		{7, "007_"},
		{42, "042_"},
		{999, "999_"},
		{1000, "1000_"},
		{12345, "12345_"},
	}

	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatPrefix(tc.n))
		})
	}
}

func TestFormatPrefix_PaddingWidth(t *testing.T) {
	for n := 0; n < 1000; n++ {
		prefix := FormatPrefix(n)
		require.Len(t, prefix, 4, "prefix for %d", n)
		assert.Equal(t, fmt.Sprintf("%03d_", n), prefix)
	}
}

func TestSequencer_CountStrategy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db-1/query", r.URL.Path)
		w.Write([]byte(`{"results": [{}, {}, {}, {}, {}, {}, {}], "has_more": false, "next_cursor": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	seq := NewSequencer(client, StrategyCount, "db-1", "")

	prefix, err := seq.Prefix(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "007_", prefix)
}

func TestSequencer_RollupStrategy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages/abc123", r.URL.Path)
		w.Write([]byte(`{
			"id": "abc123",
			"properties": {
				"Project Count": {"type": "rollup", "rollup": {"type": "number", "number": 12}}
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	seq := NewSequencer(client, StrategyRollup, "", "Project Count")

	prefix, err := seq.Prefix(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "012_", prefix)
}

func TestSequencer_RollupAbsentYieldsEmptyPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "abc123", "properties": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	seq := NewSequencer(client, StrategyRollup, "", "Project Count")

	prefix, err := seq.Prefix(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "", prefix)
}

func TestSequencer_CountStrategyPropagatesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	seq := NewSequencer(client, StrategyCount, "db-1", "")

	_, err := seq.Prefix(context.Background(), "abc123")
	require.Error(t, err)
}
