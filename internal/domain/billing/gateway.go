package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SimulatedGateway approves every charge except those made with a declined
// method. It stands in for a real processor.
type SimulatedGateway struct {
	declined map[string]struct{}
	now      func() time.Time
}

func NewSimulatedGateway(declinedMethods []string) *SimulatedGateway {
	declined := make(map[string]struct{}, len(declinedMethods))
	for _, method := range declinedMethods {
		method = strings.ToLower(strings.TrimSpace(method))
		if method != "" {
			declined[method] = struct{}{}
		}
	}
	return &SimulatedGateway{declined: declined, now: time.Now}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}

	reference := "sim_" + uuid.NewString()
	_, declined := g.declined[strings.ToLower(req.Method)]

	status := "approved"
	if declined {
		status = "declined"
	}

	return ChargeResult{
		Approved:  !declined,
		Reference: reference,
		Detail: map[string]any{
			"processor":    "simulated",
			"status":       status,
			"amount":       req.Amount,
			"currency":     req.Currency,
			"method":       req.Method,
			"reference":    reference,
			"processed_at": g.now().UTC().Format(time.RFC3339),
		},
	}, nil
}
