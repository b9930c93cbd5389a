package relay

import (
	"context"
	"encoding/json"

	commonerrors "negotiation-gateway/internal/common/errors"
	commonhttp "negotiation-gateway/internal/common/http"
	"negotiation-gateway/internal/models"
	"negotiation-gateway/pkg/round"

	"github.com/google/uuid"
)

// Broadcaster is satisfied by *Hub.
type Broadcaster interface {
	Broadcast(v interface{}) error
}

// RoundStarter builds a new round from the fixture and hands it to the
// orchestrator.
type RoundStarter struct {
	http      *commonhttp.Client
	endpoints Endpoints
	fixture   *round.Round
	agents    map[string]round.Endpoint
	hub       Broadcaster
	newID     func() string
	logger    Logger
}

func NewRoundStarter(client *commonhttp.Client, endpoints Endpoints, fixture *round.Round, agents map[string]round.Endpoint, hub Broadcaster, log Logger) *RoundStarter {
	return &RoundStarter{
		http:      client,
		endpoints: endpoints,
		fixture:   fixture,
		agents:    agents,
		hub:       hub,
		newID:     func() string { return uuid.New().String() },
		logger:    log,
	}
}

// Start tells browsers a round is beginning, fetches fresh utility functions
// and posts the filled round to the orchestrator. It returns the round sent.
func (s *RoundStarter) Start(ctx context.Context) (*round.Round, error) {
	if err := s.hub.Broadcast(models.RoundNotice{RoundTotal: true, NewRound: true}); err != nil {
		s.logger.Warn("round notice not broadcast", map[string]interface{}{"error": err})
	}

	agentUtility, err := s.utility(ctx, "/generateUtility/agent")
	if err != nil {
		return nil, err
	}
	humanUtility, err := s.utility(ctx, "/generateUtility/human")
	if err != nil {
		return nil, err
	}

	r := s.fixture.Prepare(s.newID(), agentUtility, humanUtility, s.agents)

	if err := s.http.PostJSON(ctx, join(s.endpoints.EnvOrchestrator, "/startRound"), r, nil); err != nil {
		s.logger.Error("start round rejected", map[string]interface{}{"error": err})
		return nil, commonerrors.NewRoundStartFailedError(err)
	}

	s.logger.Info("round started", map[string]interface{}{
		"environmentUUID": r.EnvironmentUUID,
		"agents":          len(r.Agents),
	})
	return r, nil
}

func (s *RoundStarter) utility(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := s.http.DoJSON(ctx, "GET", join(s.endpoints.Utility, path), nil)
	if err == nil && !json.Valid(data) {
		err = errInvalidJSON
	}
	if err != nil {
		s.logger.Error("utility request failed", map[string]interface{}{"path": path, "error": err})
		return nil, commonerrors.NewUtilityRequestFailedError(path, err)
	}
	return json.RawMessage(data), nil
}
