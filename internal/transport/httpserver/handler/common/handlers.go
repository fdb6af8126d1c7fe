package common

import (
	identitydomain "club-app-go/internal/domain/identity"
	"club-app-go/pkg/logger"
)

type Handlers struct {
	Identity *identitydomain.Service
	log      logger.Logger
}

func New(identity *identitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Identity: identity,
		log:      log,
	}
}
