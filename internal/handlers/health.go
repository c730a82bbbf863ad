package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	svc *Service
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status, resp := h.svc.Health()
	return proxyResponse(status, resp, lambdaRequestID(request)), nil
}
