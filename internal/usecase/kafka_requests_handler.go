package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TTVPull/internal/domain/models"
	"TTVPull/pkg/logger"
)

// RequestsHandler consumes campaign requests from Kafka and runs the same
// pipeline the HTTP API triggers. Payloads mirror RunCampaignRequest.
type RequestsHandler struct {
	topic  string
	runner *CampaignRunner
	log    *logger.Logger
}

func NewRequestsHandler(topic string, runner *CampaignRunner, log *logger.Logger) *RequestsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RequestsHandler{topic: topic, runner: runner, log: log}
}

// Topic returns the subscribed topic.
func (h *RequestsHandler) Topic() string { return h.topic }

// Handle decodes one request and runs the campaign. Malformed payloads are
// rejected without retry; pipeline failures are logged and swallowed so the
// consumer keeps draining the topic.
func (h *RequestsHandler) Handle(ctx context.Context, data []byte) error {
	var req models.RunCampaignRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode campaign request: %w", err)
	}
	if req.Planet == "" {
		return fmt.Errorf("campaign request has no planet")
	}

	if _, err := h.runner.Run(ctx, NewCampaignInput(&req)); err != nil {
		h.log.Error("queued campaign failed",
			logger.String("planet", req.Planet),
			logger.Error(err))
	}
	return nil
}
