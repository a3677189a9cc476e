package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// differenceDocument is the persisted snapshot layout of a DirectoryDifference
type differenceDocument struct {
	OnlyInLeft  []string           `json:"onlyInLeft"`
	OnlyInRight []string           `json:"onlyInRight"`
	Modified    []string           `json:"modified"`
	Common      []string           `json:"common"`
	Matches     map[string]string  `json:"matches,omitempty"`
	Summary     *DifferenceSummary `json:"summary,omitempty"`
}

// MarshalJSON encodes the difference with sorted arrays and a derived summary
func (d *DirectoryDifference) MarshalJSON() ([]byte, error) {
	summary := d.Summary()
	doc := differenceDocument{
		OnlyInLeft:  d.OnlyInLeft(),
		OnlyInRight: d.OnlyInRight(),
		Modified:    d.Modified(),
		Common:      d.Common(),
		Summary:     &summary,
	}
	if len(d.matches) > 0 {
		doc.Matches = d.Matches()
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a snapshot. The summary block is ignored.
func (d *DirectoryDifference) UnmarshalJSON(data []byte) error {
	var doc differenceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode difference: %w", err)
	}

	parsed, err := NewDirectoryDifference(doc.OnlyInLeft, doc.OnlyInRight, doc.Modified, doc.Common, doc.Matches)
	if err != nil {
		return fmt.Errorf("invalid difference: %w", err)
	}

	*d = *parsed
	return nil
}
