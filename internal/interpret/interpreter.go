package interpret

import (
	"time"

	"negotiation-gateway/internal/models"
)

// Outcome says why an interpretation did or did not produce a command.
type Outcome string

const (
	OutcomeCommand          Outcome = "command"
	OutcomeNoIntent         Outcome = "no_intent"
	OutcomeUnknownIntent    Outcome = "unknown_intent"
	OutcomeLowConfidence    Outcome = "low_confidence"
	OutcomeUnrecognizedRole Outcome = "unrecognized_role"
)

// Interpretation is the result of reading one classification. Command is
// nil unless Outcome is OutcomeCommand.
type Interpretation struct {
	Command   *models.Command
	Outcome   Outcome
	Malformed []error
}

// Recognized reports whether a command was produced.
func (i Interpretation) Recognized() bool {
	return i.Command != nil
}

type Option func(*Interpreter)

// WithClock replaces time.Now for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// Interpreter turns classifier output into negotiation commands. It holds
// no mutable state and is safe for concurrent use.
type Interpreter struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config, opts ...Option) *Interpreter {
	i := &Interpreter{cfg: cfg.withDefaults(), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interpreter) Config() Config {
	return i.cfg
}

// Interpret decides on the top-ranked intent only. Lower-ranked intents are
// ignored even when the top one is rejected.
func (i *Interpreter) Interpret(res *models.ClassificationResult) Interpretation {
	top, ok := res.TopIntent()
	if !ok {
		return Interpretation{Outcome: OutcomeNoIntent}
	}

	var (
		cmd     *models.Command
		outcome = OutcomeCommand
		bad     []error
	)

	switch top.Intent {
	case models.IntentOffer, models.IntentAcceptOffer, models.IntentRejectOffer:
		if top.Confidence <= i.cfg.ConfidenceFloor {
			return Interpretation{Outcome: OutcomeLowConfidence}
		}
	default:
		return Interpretation{Outcome: OutcomeUnknownIntent}
	}

	switch top.Intent {
	case models.IntentOffer:
		offer := ExtractOffer(res.Entities, i.cfg.DefaultCurrency)
		bad = offer.Malformed
		cmd = offerCommand(res.Input.Role, offer)
		if cmd == nil {
			outcome = OutcomeUnrecognizedRole
		}
	case models.IntentAcceptOffer:
		cmd = models.NewResponse(models.CommandAcceptOffer)
	case models.IntentRejectOffer:
		cmd = models.NewResponse(models.CommandRejectOffer)
	}

	if cmd == nil {
		return Interpretation{Outcome: outcome, Malformed: bad}
	}

	cmd.Metadata = i.metadata(res)
	return Interpretation{Command: cmd, Outcome: outcome, Malformed: bad}
}

func offerCommand(role string, offer Offer) *models.Command {
	if offer.Price != nil {
		switch role {
		case models.RoleBuyer:
			return models.NewPricedOffer(models.CommandBuyOffer, offer.Quantity, *offer.Price)
		case models.RoleSeller:
			return models.NewPricedOffer(models.CommandSellOffer, offer.Quantity, *offer.Price)
		}
		return nil
	}

	switch role {
	case models.RoleBuyer:
		return models.NewRequest(models.CommandBuyRequest, offer.Quantity)
	case models.RoleSeller:
		return models.NewRequest(models.CommandSellRequest, offer.Quantity)
	}
	return nil
}

// metadata runs after the command core is built and never feeds back into
// the choice of command.
func (i *Interpreter) metadata(res *models.ClassificationResult) *models.Metadata {
	in := res.Input
	md := &models.Metadata{
		Text:            in.Text,
		Role:            in.Role,
		Speaker:         in.Speaker,
		EnvironmentUUID: in.EnvironmentUUID,
		TimeStamp:       i.now(),
	}
	if in.Addressee != "" {
		addressee := in.Addressee
		md.Addressee = &addressee
	} else {
		md.Addressee = ResolveAddressee(res.Entities, i.cfg.DefaultAgent)
	}
	return md
}
