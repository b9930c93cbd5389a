// internal/models/relay.go
package models

import "encoding/json"

const (
	SpeakerHuman = "Human"

	// StartRoundSignal is the raw websocket payload the browser sends to
	// begin a new round.
	StartRoundSignal = "START_NEW_ROUND"
)

// ChatMessage is a transcript line sent to the environment orchestrator on
// behalf of the human participant.
type ChatMessage struct {
	Speaker         string `json:"speaker"`
	Addressee       string `json:"addressee"`
	Text            string `json:"text"`
	EnvironmentUUID string `json:"environmentUUID,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

// TranscriptAck is returned to whoever posts a transcript line.
type TranscriptAck struct {
	MsgType string `json:"msgType"`
	Status  string `json:"Status"`
}

func NewTranscriptAck() TranscriptAck {
	return TranscriptAck{MsgType: "submitTranscript", Status: "OK"}
}

// RoundNotice tells browser clients about round lifecycle and results.
type RoundNotice struct {
	RoundTotal bool            `json:"roundTotal"`
	NewRound   bool            `json:"newRound"`
	ID         string          `json:"id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// RoundTotals is the orchestrator's end-of-round summary keyed by participant.
type RoundTotals struct {
	RoundTotals map[string]json.RawMessage `json:"roundTotals"`
}

// UtilityValue is a currency-denominated utility.
type UtilityValue struct {
	CurrencyUnit string  `json:"currencyUnit"`
	Value        float64 `json:"value"`
}

// HumanUtility adds the per-good breakdown reported for the human.
type HumanUtility struct {
	CurrencyUnit string             `json:"currencyUnit"`
	Value        float64            `json:"value"`
	Breakdown    map[string]float64 `json:"breakdown"`
}

// AgentTotals is the per-agent summary used when an agent reported nothing.
type AgentTotals struct {
	Quantity Quantity     `json:"quantity"`
	Revenue  float64      `json:"revenue"`
	Utility  UtilityValue `json:"utility"`
}

// HumanTotals is the human summary used when the human reported nothing.
type HumanTotals struct {
	Quantity Quantity     `json:"quantity"`
	Cost     float64      `json:"cost"`
	Utility  HumanUtility `json:"utility"`
}

func EmptyAgentTotals(currency string) AgentTotals {
	return AgentTotals{
		Quantity: Quantity{},
		Utility:  UtilityValue{CurrencyUnit: currency},
	}
}

func EmptyHumanTotals(currency string) HumanTotals {
	return HumanTotals{
		Quantity: Quantity{},
		Utility:  HumanUtility{CurrencyUnit: currency, Breakdown: map[string]float64{}},
	}
}
