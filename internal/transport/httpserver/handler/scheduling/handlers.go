package scheduling

import (
	schedulingdomain "club-app-go/internal/domain/scheduling"
	"club-app-go/pkg/logger"
)

type Handlers struct {
	Scheduling *schedulingdomain.Service
	log        logger.Logger
}

func New(scheduling *schedulingdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Scheduling: scheduling,
		log:        log,
	}
}
