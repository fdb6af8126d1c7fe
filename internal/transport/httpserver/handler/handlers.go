package handler

import (
	accesshandler "club-app-go/internal/transport/httpserver/handler/access"
	billinghandler "club-app-go/internal/transport/httpserver/handler/billing"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
	membershandler "club-app-go/internal/transport/httpserver/handler/members"
	schedulinghandler "club-app-go/internal/transport/httpserver/handler/scheduling"
)

type Handlers struct {
	Common     *commonhandler.Handlers
	Members    *membershandler.Handlers
	Billing    *billinghandler.Handlers
	Scheduling *schedulinghandler.Handlers
	Access     *accesshandler.Handlers
}

func New(common *commonhandler.Handlers, members *membershandler.Handlers, billing *billinghandler.Handlers, scheduling *schedulinghandler.Handlers, access *accesshandler.Handlers) *Handlers {
	return &Handlers{
		Common:     common,
		Members:    members,
		Billing:    billing,
		Scheduling: scheduling,
		Access:     access,
	}
}
