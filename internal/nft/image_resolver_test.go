package nft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

const placeholder = "https://via.placeholder.com/32x32?text=NF"

func imageServer(t *testing.T, hits *int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/7.png" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImageUrlResolvesExistingImage(t *testing.T) {
	var hits int32
	server := imageServer(t, &hits)
	resolver := NewImageResolver(server.Client(), server.URL+"/", placeholder)

	assert.Equal(t, server.URL+"/7.png", resolver.ImageUrl(context.Background(), 7))
	assert.Equal(t, server.URL+"/7.png", resolver.ImageUrl(context.Background(), 7))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second lookup is cached")
}

func TestImageUrlFallsBackToPlaceholder(t *testing.T) {
	var hits int32
	server := imageServer(t, &hits)
	resolver := NewImageResolver(server.Client(), server.URL+"/", placeholder)

	assert.Equal(t, placeholder, resolver.ImageUrl(context.Background(), 8))
}

func TestImageUrlTransportErrorNotCached(t *testing.T) {
	var hits int32
	server := imageServer(t, &hits)
	base := server.URL + "/"
	server.Close()

	resolver := NewImageResolver(nil, base, placeholder)
	assert.Equal(t, placeholder, resolver.ImageUrl(context.Background(), 7))

	_, cached := resolver.cache.Get(7)
	assert.False(t, cached)
}

func TestImageUrlSurvivesCancelledCaller(t *testing.T) {
	var hits int32
	server := imageServer(t, &hits)
	resolver := NewImageResolver(server.Client(), server.URL+"/", placeholder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, server.URL+"/7.png", resolver.ImageUrl(ctx, 7))
	cached, ok := resolver.cache.Get(7)
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/7.png", cached)
}
