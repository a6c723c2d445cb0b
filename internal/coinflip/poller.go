package coinflip

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Poller struct {
	service  *Service
	interval time.Duration
}

func NewPoller(service *Service, interval time.Duration) *Poller {
	return &Poller{service: service, interval: interval}
}

// Run refreshes every session on each tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", p.interval).Msg("Coin flip poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Coin flip poller stopped")
			return
		case <-ticker.C:
			p.service.RefreshAll(ctx)
		}
	}
}
