package series

import (
	"bytes"
	"encoding/json"
	"math"
)

// Proportion is a record augmented by DivideBy.
type Proportion[E any] struct {
	Record         E
	Total          float64
	Proportion     float64
	ConfidenceLow  float64
	ConfidenceHigh float64
}

// MarshalJSON writes the record's own fields next to total, proportion,
// confidenceLow and confidenceHigh. Non-finite values are written as null.
// A record that does not encode as a JSON object is nested under "record".
func (p Proportion[E]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(p.Record)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
	} else {
		fields["record"] = raw
	}

	for name, v := range map[string]float64{
		"total":          p.Total,
		"proportion":     p.Proportion,
		"confidenceLow":  p.ConfidenceLow,
		"confidenceHigh": p.ConfidenceHigh,
	} {
		fields[name] = finiteJSON(v)
	}
	return json.Marshal(fields)
}

func finiteJSON(v float64) json.RawMessage {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.RawMessage("null")
	}
	b, _ := json.Marshal(v)
	return b
}
