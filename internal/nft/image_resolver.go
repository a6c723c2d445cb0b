package nft

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const imageCacheSize = 4096

// ImageResolver maps token ids to <base><id>.png, falling back to a placeholder when a HEAD
// probe does not return 2xx. Probe outcomes are cached; transport errors are not.
type ImageResolver struct {
	client      *http.Client
	baseUrl     string
	placeholder string
	cache       *lru.Cache[uint64, string]
	probes      singleflight.Group
}

func NewImageResolver(client *http.Client, baseUrl string, placeholder string) *ImageResolver {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	cache, err := lru.New[uint64, string](imageCacheSize)
	if err != nil {
		panic(err)
	}

	return &ImageResolver{
		client:      client,
		baseUrl:     baseUrl,
		placeholder: placeholder,
		cache:       cache,
	}
}

func (r *ImageResolver) ImageUrl(ctx context.Context, tokenId uint64) string {
	if url, ok := r.cache.Get(tokenId); ok {
		return url
	}

	// The probe is shared by every waiter and outlives the first caller.
	probeCtx := context.WithoutCancel(ctx)
	url, _, _ := r.probes.Do(strconv.FormatUint(tokenId, 10), func() (any, error) {
		return r.probe(probeCtx, tokenId), nil
	})
	return url.(string)
}

func (r *ImageResolver) probe(ctx context.Context, tokenId uint64) string {
	url := fmt.Sprintf("%s%d.png", r.baseUrl, tokenId)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Cannot build image probe")
		return r.placeholder
	}

	resp, err := r.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Uint64("tokenId", tokenId).Msg("Image probe failed")
		return r.placeholder
	}
	defer resp.Body.Close()

	resolved := url
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resolved = r.placeholder
	}
	r.cache.Add(tokenId, resolved)
	return resolved
}
