// internal/models/negotiation.go
package models

import (
	"encoding/json"
	"time"
)

// Classifier wire contract. Tags and intent names are case-sensitive.
const (
	EntityNumber   = "sys-number"
	EntityGood     = "good"
	EntityCurrency = "sys-currency"
	EntityAvatar   = "avatarName"

	IntentOffer       = "Offer"
	IntentAcceptOffer = "AcceptOffer"
	IntentRejectOffer = "RejectOffer"

	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// ClassificationResult is what the NLU service returns for one utterance.
type ClassificationResult struct {
	Intents  []Intent        `json:"intents"`
	Entities []EntityMention `json:"entities"`
	Input    Input           `json:"input"`
}

// TopIntent returns the highest ranked intent, or false when there is none.
func (r *ClassificationResult) TopIntent() (Intent, bool) {
	if r == nil || len(r.Intents) == 0 {
		return Intent{}, false
	}
	return r.Intents[0], true
}

type Intent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type EntityMention struct {
	Entity   string          `json:"entity"`
	Value    string          `json:"value"`
	Metadata *EntityMetadata `json:"metadata,omitempty"`
}

type EntityMetadata struct {
	NumericValue float64 `json:"numeric_value"`
	Unit         string  `json:"unit,omitempty"`
}

// Input is the utterance as it was sent to the classifier.
type Input struct {
	Text            string `json:"text"`
	Role            string `json:"role,omitempty"`
	Addressee       string `json:"addressee,omitempty"`
	Speaker         string `json:"speaker,omitempty"`
	EnvironmentUUID string `json:"environmentUUID,omitempty"`
}

// Quantity maps a good name to an amount.
type Quantity map[string]float64

// Clone returns an independent copy. A nil Quantity clones to nil.
func (q Quantity) Clone() Quantity {
	if q == nil {
		return nil
	}
	out := make(Quantity, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

type Price struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type CommandType string

const (
	CommandBuyOffer    CommandType = "BuyOffer"
	CommandSellOffer   CommandType = "SellOffer"
	CommandBuyRequest  CommandType = "BuyRequest"
	CommandSellRequest CommandType = "SellRequest"
	CommandAcceptOffer CommandType = "AcceptOffer"
	CommandRejectOffer CommandType = "RejectOffer"
)

// IsOfferFamily reports whether the command carries a quantity.
func (t CommandType) IsOfferFamily() bool {
	switch t {
	case CommandBuyOffer, CommandSellOffer, CommandBuyRequest, CommandSellRequest:
		return true
	}
	return false
}

// HasPrice reports whether the command always carries a price.
func (t CommandType) HasPrice() bool {
	return t == CommandBuyOffer || t == CommandSellOffer
}

// Command is an interpreted negotiation move. Build it with the New*
// constructors so the price/quantity invariants of each type hold.
type Command struct {
	Type     CommandType `json:"type"`
	Quantity Quantity    `json:"quantity,omitempty"`
	Price    *Price      `json:"price,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// MarshalJSON always emits quantity for the offer family, even when empty,
// and never for accept/reject.
func (c Command) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type     CommandType `json:"type"`
		Quantity *Quantity   `json:"quantity,omitempty"`
		Price    *Price      `json:"price,omitempty"`
		Metadata *Metadata   `json:"metadata,omitempty"`
	}
	w := wire{Type: c.Type, Price: c.Price, Metadata: c.Metadata}
	if c.Type.IsOfferFamily() {
		q := c.Quantity
		if q == nil {
			q = Quantity{}
		}
		w.Quantity = &q
	}
	return json.Marshal(w)
}

// NewPricedOffer builds a BuyOffer or SellOffer. Quantity is never nil.
func NewPricedOffer(t CommandType, quantity Quantity, price Price) *Command {
	if quantity == nil {
		quantity = Quantity{}
	}
	return &Command{Type: t, Quantity: quantity, Price: &price}
}

// NewRequest builds a BuyRequest or SellRequest, which never carry a price.
func NewRequest(t CommandType, quantity Quantity) *Command {
	if quantity == nil {
		quantity = Quantity{}
	}
	return &Command{Type: t, Quantity: quantity}
}

// NewResponse builds an AcceptOffer or RejectOffer.
func NewResponse(t CommandType) *Command {
	return &Command{Type: t}
}

// Metadata is a copy of the input plus the resolved addressee and the
// instant the command was interpreted.
type Metadata struct {
	Text            string    `json:"text"`
	Role            string    `json:"role,omitempty"`
	Speaker         string    `json:"speaker,omitempty"`
	EnvironmentUUID string    `json:"environmentUUID,omitempty"`
	Addressee       *string   `json:"addressee"`
	TimeStamp       time.Time `json:"timeStamp"`
}

// Bid is the minimal payload forwarded to the negotiation engine.
type Bid struct {
	Type     CommandType
	Price    *Price
	Quantity Quantity
}

// MarshalJSON keeps an empty quantity on offer-family bids and omits it on
// accept/reject bids.
func (b Bid) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type     CommandType `json:"type"`
		Price    *Price      `json:"price,omitempty"`
		Quantity *Quantity   `json:"quantity,omitempty"`
	}
	w := wire{Type: b.Type, Price: b.Price}
	if b.Type.IsOfferFamily() {
		q := b.Quantity
		if q == nil {
			q = Quantity{}
		}
		w.Quantity = &q
	}
	return json.Marshal(w)
}

func (b *Bid) UnmarshalJSON(data []byte) error {
	var w struct {
		Type     CommandType `json:"type"`
		Price    *Price      `json:"price"`
		Quantity Quantity    `json:"quantity"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Type, b.Price, b.Quantity = w.Type, w.Price, w.Quantity
	return nil
}
