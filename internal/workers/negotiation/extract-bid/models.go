// internal/workers/negotiation/extract-bid/models.go
package extractbid

import "negotiation-gateway/internal/models"

// Input is one utterance plus what is known about who said it.
type Input struct {
	Text            string `json:"text"`
	Role            string `json:"role"`
	Addressee       string `json:"addressee,omitempty"`
	Speaker         string `json:"speaker,omitempty"`
	EnvironmentUUID string `json:"environmentUUID,omitempty"`
}

type Output struct {
	Recognized        bool        `json:"recognized"`
	Outcome           string      `json:"outcome"`
	Bid               *models.Bid `json:"bid,omitempty"`
	Addressee         *string     `json:"addressee"`
	MalformedEntities []string    `json:"malformedEntities,omitempty"`
}
