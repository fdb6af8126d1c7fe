package billing

import (
	billingdomain "club-app-go/internal/domain/billing"
	"club-app-go/pkg/logger"
)

type Handlers struct {
	Billing *billingdomain.Service
	log     logger.Logger
}

func New(billing *billingdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Billing: billing,
		log:     log,
	}
}
