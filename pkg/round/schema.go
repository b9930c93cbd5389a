// pkg/round/schema.go
package round

import "encoding/json"

// Round is the body posted to the environment orchestrator's /startRound.
type Round struct {
	EnvironmentUUID string        `json:"environmentUUID"`
	Durations       Durations     `json:"durations"`
	Agents          []Participant `json:"agents"`
	Human           Participant   `json:"human"`
}

// Durations are in seconds.
type Durations struct {
	WarmUp    int `json:"warmUp"`
	Round     int `json:"round"`
	PostRound int `json:"postRound"`
}

type Participant struct {
	Name            string          `json:"name"`
	UtilityFunction json.RawMessage `json:"utilityFunction,omitempty"`
	Protocol        string          `json:"protocol,omitempty"`
	Host            string          `json:"host,omitempty"`
	Port            int             `json:"port,omitempty"`
}

// Endpoint is where the orchestrator can reach an agent.
type Endpoint struct {
	Protocol string
	Host     string
	Port     int
}
