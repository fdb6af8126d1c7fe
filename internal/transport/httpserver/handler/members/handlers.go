package members

import (
	membershipdomain "club-app-go/internal/domain/membership"
	"club-app-go/pkg/logger"
)

type Handlers struct {
	Membership *membershipdomain.Service
	log        logger.Logger
}

func New(membership *membershipdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Membership: membership,
		log:        log,
	}
}
