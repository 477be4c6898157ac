package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "semspore",
		Category:    "patch",
		Version:     "v1",
		Description: "Triples added to a target model by an applied patch",
		Factory:     func() any { return &PatchPayload{} },
	})
	if err != nil {
		panic("failed to register PatchPayload: " + err.Error())
	}
}

// PatchType is the message type for applied-patch payloads.
var PatchType = message.Type{Domain: "semspore", Category: "patch", Version: "v1"}

// PatchPayload carries the triples one patch added to a target model.
type PatchPayload struct {
	EntityID_  string           `json:"id"`
	Model      string           `json:"model"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *PatchPayload) EntityID() string          { return p.EntityID_ }
func (p *PatchPayload) Triples() []message.Triple { return p.TripleData }
func (p *PatchPayload) Schema() message.Type      { return PatchType }

func (p *PatchPayload) Validate() error {
	if p.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if p.Model == "" {
		return errors.New("model is required")
	}
	return nil
}

func (p *PatchPayload) MarshalJSON() ([]byte, error) {
	type Alias PatchPayload
	return json.Marshal((*Alias)(p))
}

func (p *PatchPayload) UnmarshalJSON(data []byte) error {
	type Alias PatchPayload
	return json.Unmarshal(data, (*Alias)(p))
}
