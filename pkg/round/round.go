// pkg/round/round.go
package round

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFixture reads the sample round used as the template for every new round.
func LoadFixture(path string) (*Round, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Round
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse round fixture %s: %w", path, err)
	}
	if len(r.Agents) == 0 {
		return nil, fmt.Errorf("round fixture %s lists no agents", path)
	}
	return &r, nil
}

// Clone returns a deep copy so a template can be filled without being mutated.
func (r *Round) Clone() *Round {
	out := *r
	out.Agents = make([]Participant, len(r.Agents))
	for i, a := range r.Agents {
		out.Agents[i] = a.clone()
	}
	out.Human = r.Human.clone()
	return &out
}

func (p Participant) clone() Participant {
	if p.UtilityFunction != nil {
		p.UtilityFunction = append(json.RawMessage(nil), p.UtilityFunction...)
	}
	return p
}

// Prepare returns a filled copy of the template: every agent gets the agent
// utility and its endpoint, the human gets the human utility.
// Agents without an endpoint keep the fixture's protocol, host and port.
func (r *Round) Prepare(environmentUUID string, agentUtility, humanUtility json.RawMessage, endpoints map[string]Endpoint) *Round {
	out := r.Clone()
	out.EnvironmentUUID = environmentUUID
	for i := range out.Agents {
		out.Agents[i].UtilityFunction = append(json.RawMessage(nil), agentUtility...)
		if ep, ok := endpoints[out.Agents[i].Name]; ok {
			out.Agents[i].Protocol = ep.Protocol
			out.Agents[i].Host = ep.Host
			out.Agents[i].Port = ep.Port
		}
	}
	out.Human.UtilityFunction = append(json.RawMessage(nil), humanUtility...)
	return out
}
