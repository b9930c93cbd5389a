package relay

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	commonerrors "negotiation-gateway/internal/common/errors"
	commonhttp "negotiation-gateway/internal/common/http"
	"negotiation-gateway/internal/common/metrics"
	"negotiation-gateway/internal/models"
)

// Endpoints are the base URLs and paths the relay posts to.
type Endpoints struct {
	EnvOrchestrator string
	AgentMessage    string
	ChatUI          string
	Utility         string
	Input           string
	Output          string
}

// Forwarder posts chat traffic to its next hop.
type Forwarder struct {
	http      *commonhttp.Client
	endpoints Endpoints
	agents    []string
	now       func() time.Time
	logger    Logger

	mu          sync.RWMutex
	environment string
}

func NewForwarder(client *commonhttp.Client, endpoints Endpoints, agents []string, log Logger) *Forwarder {
	return &Forwarder{
		http:      client,
		endpoints: endpoints,
		agents:    agents,
		now:       time.Now,
		logger:    log,
	}
}

// SetEnvironment records the round utterances belong to.
func (f *Forwarder) SetEnvironment(environmentUUID string) {
	f.mu.Lock()
	f.environment = environmentUUID
	f.mu.Unlock()
}

// Environment is the UUID of the round last started, or empty.
func (f *Forwarder) Environment() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.environment
}

// SubmitUtterance sends what the human typed to the orchestrator, addressed
// to whichever agent the text opens with and tagged with the current round.
func (f *Forwarder) SubmitUtterance(ctx context.Context, text string) error {
	msg := models.ChatMessage{
		Speaker:         models.SpeakerHuman,
		Addressee:       DetectAddressee(text, f.agents),
		Text:            text,
		EnvironmentUUID: f.Environment(),
		Timestamp:       f.now().UnixMilli(),
	}
	return f.post(ctx, "env_orch", join(f.endpoints.EnvOrchestrator, f.endpoints.Output), msg)
}

// Route delivers a relayed message: human lines go to the agents, everything
// else to the chat UI. raw is forwarded unchanged.
func (f *Forwarder) Route(ctx context.Context, speaker string, raw json.RawMessage) error {
	if speaker == models.SpeakerHuman {
		return f.post(ctx, "agents", join(f.endpoints.AgentMessage, f.endpoints.Input), raw)
	}
	return f.post(ctx, "chat_ui", join(f.endpoints.ChatUI, f.endpoints.Input), raw)
}

func (f *Forwarder) post(ctx context.Context, target, url string, body interface{}) error {
	err := f.http.PostJSON(ctx, url, body, nil)
	if err != nil {
		metrics.RelayForwards.WithLabelValues(target, metrics.StatusError).Inc()
		f.logger.Error("relay forward failed", map[string]interface{}{
			"target": target,
			"url":    url,
			"error":  err,
		})
		return commonerrors.NewRelayForwardFailedError(target, err)
	}
	metrics.RelayForwards.WithLabelValues(target, metrics.StatusOK).Inc()
	f.logger.Debug("relay forwarded", map[string]interface{}{"target": target})
	return nil
}

func join(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
