package access

import (
	accessdomain "club-app-go/internal/domain/access"
	"club-app-go/pkg/logger"
)

// Limiter throttles scans per client.
type Limiter interface {
	Allow(key string) bool
}

type Handlers struct {
	Access  *accessdomain.Service
	limiter Limiter
	log     logger.Logger
}

func New(access *accessdomain.Service, limiter Limiter, log logger.Logger) *Handlers {
	return &Handlers{
		Access:  access,
		limiter: limiter,
		log:     log,
	}
}
