package domain

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/samber/lo"
)

const (
	videoSourceKey   = "source"
	videoPausedKey   = "paused"
	videoPositionKey = "position"
)

// VideoState is the shared player state. Known fields are nil when the client
// did not send them; fields the server does not know about are kept in Extra.
// Encoding writes back exactly what was decoded.
type VideoState struct {
	Source   *string
	Paused   *bool
	Position *float64
	Extra    map[string]json.RawMessage
}

func (v VideoState) Clone() VideoState {
	return VideoState{
		Source:   clonePtr(v.Source),
		Paused:   clonePtr(v.Paused),
		Position: clonePtr(v.Position),
		Extra:    maps.Clone(v.Extra),
	}
}

func (v VideoState) IsPaused() bool {
	return lo.FromPtr(v.Paused)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	return lo.ToPtr(*p)
}

func (v VideoState) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(v.Extra)+3)
	for key, raw := range v.Extra {
		fields[key] = raw
	}
	if v.Source != nil {
		fields[videoSourceKey] = *v.Source
	}
	if v.Paused != nil {
		fields[videoPausedKey] = *v.Paused
	}
	if v.Position != nil {
		fields[videoPositionKey] = *v.Position
	}

	return json.Marshal(fields)
}

func (v *VideoState) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*v = VideoState{}
	for key, raw := range fields {
		// a null known field has no typed value; keep it verbatim
		if string(raw) == "null" {
			v.setExtra(key, raw)
			continue
		}

		var err error
		switch key {
		case videoSourceKey:
			err = json.Unmarshal(raw, &v.Source)
		case videoPausedKey:
			err = json.Unmarshal(raw, &v.Paused)
		case videoPositionKey:
			err = json.Unmarshal(raw, &v.Position)
		default:
			v.setExtra(key, raw)
		}
		if err != nil {
			return fmt.Errorf("video field %q: %w", key, err)
		}
	}

	return nil
}

func (v *VideoState) setExtra(key string, raw json.RawMessage) {
	if v.Extra == nil {
		v.Extra = make(map[string]json.RawMessage)
	}
	v.Extra[key] = raw
}
