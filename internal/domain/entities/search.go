package entities

import (
	"encoding/json"
	"time"
)

// RankedCandidate is a provider annotated with its distance from the search
// origin. Distance is nil when the provider has no usable coordinates; nil
// distances always rank last.
type RankedCandidate struct {
	Provider
	Distance      *float64 `json:"distance"`
	DistanceLabel string   `json:"distanceLabel,omitempty"`
	Availability  string   `json:"availability,omitempty"`
}

// UnmarshalJSON decodes both the embedded provider and the annotation
// fields. Without this the promoted Provider.UnmarshalJSON would run alone
// and drop the annotations when a snapshot is restored.
func (c *RankedCandidate) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.Provider); err != nil {
		return err
	}

	aux := struct {
		Distance      *float64 `json:"distance"`
		DistanceLabel string   `json:"distanceLabel"`
		Availability  string   `json:"availability"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Distance = aux.Distance
	c.DistanceLabel = aux.DistanceLabel
	c.Availability = aux.Availability
	return nil
}

// SearchSnapshot is the persisted state of a patient's last search. It is
// overwritten on every state change and never merged; review summaries are
// deliberately excluded and re-fetched after a restore.
type SearchSnapshot struct {
	Candidates      []RankedCandidate `json:"doctors"`
	Coords          *Location         `json:"coords"`
	SelectedService string            `json:"selectedService,omitempty"`
	ManualPlace     string            `json:"manualPlace,omitempty"`
	Query           string            `json:"query,omitempty"`
	StarFilter      int               `json:"starFilter"`
	ViewMode        string            `json:"viewMode,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}
