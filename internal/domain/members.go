package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Participant struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Roster is the set of participants of a session keyed by id. Iteration
// follows join order.
type Roster struct {
	order []string
	byID  map[string]Participant
}

func NewRoster() *Roster {
	return &Roster{
		order: make([]string, 0),
		byID:  make(map[string]Participant),
	}
}

func (r *Roster) Len() int {
	return len(r.order)
}

func (r *Roster) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Roster) Get(id string) (Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Add inserts p and reports whether it was inserted. A participant whose id
// is already present is left untouched.
func (r *Roster) Add(p Participant) bool {
	if r.Has(p.ID) {
		return false
	}

	r.order = append(r.order, p.ID)
	r.byID[p.ID] = p
	return true
}

func (r *Roster) Remove(id string) bool {
	if !r.Has(id) {
		return false
	}

	delete(r.byID, id)
	for index, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:index], r.order[index+1:]...)
			break
		}
	}

	return true
}

func (r *Roster) List() []Participant {
	list := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.byID[id])
	}

	return list
}

func (r *Roster) Clone() *Roster {
	clone := &Roster{
		order: make([]string, len(r.order)),
		byID:  make(map[string]Participant, len(r.byID)),
	}
	copy(clone.order, r.order)
	for id, p := range r.byID {
		clone.byID[id] = p
	}

	return clone
}

// MarshalJSON writes the roster as an object keyed by participant id, keys
// in join order.
func (r *Roster) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for index, id := range r.order {
		if index > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(r.byID[id])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (r *Roster) UnmarshalJSON(data []byte) error {
	*r = *NewRoster()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("roster must be a json object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected roster key %v", tok)
		}

		var p Participant
		if err := dec.Decode(&p); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = id
		}

		r.Add(p)
	}

	_, err = dec.Token()
	return err
}
