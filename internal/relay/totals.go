package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	commonhttp "negotiation-gateway/internal/common/http"
	"negotiation-gateway/internal/models"
)

var errInvalidJSON = errors.New("response is not valid JSON")

// TotalsReporter turns end-of-round totals into utility results for the browser.
type TotalsReporter struct {
	http         *commonhttp.Client
	endpoints    Endpoints
	participants []string
	currency     string
	hub          Broadcaster
	logger       Logger
}

func NewTotalsReporter(client *commonhttp.Client, endpoints Endpoints, participants []string, currency string, hub Broadcaster, log Logger) *TotalsReporter {
	return &TotalsReporter{
		http:         client,
		endpoints:    endpoints,
		participants: participants,
		currency:     currency,
		hub:          hub,
		logger:       log,
	}
}

// Report asks the orchestrator to score every agent and the human, then
// broadcasts each result as it arrives. A participant missing from totals is
// scored with an empty summary. Failures are logged per participant.
func (t *TotalsReporter) Report(ctx context.Context, totals models.RoundTotals) {
	names := append(append([]string(nil), t.participants...), models.SpeakerHuman)

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			t.reportOne(ctx, name, t.summary(totals, name))
		}(name)
	}
	wg.Wait()
}

func (t *TotalsReporter) summary(totals models.RoundTotals, name string) interface{} {
	if raw, ok := totals.RoundTotals[name]; ok && len(raw) > 0 && string(raw) != "null" {
		return raw
	}
	t.logger.Debug("no totals reported, using empty summary", map[string]interface{}{"participant": name})
	if name == models.SpeakerHuman {
		return models.EmptyHumanTotals(t.currency)
	}
	return models.EmptyAgentTotals(t.currency)
}

func (t *TotalsReporter) reportOne(ctx context.Context, name string, summary interface{}) {
	path := "/calculateUtility/agent"
	if name == models.SpeakerHuman {
		path = "/calculateUtility/human"
	}

	data, err := t.http.DoJSON(ctx, "GET", join(t.endpoints.EnvOrchestrator, path), summary)
	if err != nil {
		t.logger.Error("utility calculation failed", map[string]interface{}{
			"participant": name,
			"error":       err,
		})
		return
	}
	if !json.Valid(data) {
		// pass non-JSON bodies through as a string
		data, _ = json.Marshal(string(data))
	}

	notice := models.RoundNotice{RoundTotal: true, NewRound: false, ID: name, Data: data}
	if err := t.hub.Broadcast(notice); err != nil {
		t.logger.Warn("round totals not broadcast", map[string]interface{}{"participant": name, "error": err})
	}
}
