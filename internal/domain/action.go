package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedAction = errors.New("malformed action")

type Kind string

const (
	KindAddParticipant    Kind = "add-participant"
	KindRemoveParticipant Kind = "remove-participant"
	KindSetVideo          Kind = "set-video"
	KindAddMessage        Kind = "add-message"
	KindCommand           Kind = "command"
	KindRoomSync          Kind = "room-sync"
)

type CommandToken string

const (
	CommandPause CommandToken = "pause"
	CommandPlay  CommandToken = "play"
	CommandSet   CommandToken = "set"
)

// Visitor has one method per action variant. Adding a variant adds a method
// here, so every consumer stops compiling until it handles the new kind.
type Visitor interface {
	VisitAddParticipant(AddParticipant)
	VisitRemoveParticipant(RemoveParticipant)
	VisitSetVideo(SetVideo)
	VisitAddMessage(AddMessage)
	VisitCommand(Command)
	VisitRoomSync(RoomSync)
	VisitUnknown(Unknown)
}

// Action is a tagged state change or event relayed between participants.
// On the wire it is {"kind": ..., "payload": ...}.
type Action interface {
	Kind() Kind
	Accept(Visitor)
	json.Marshaler
}

type AddParticipant struct {
	Participant Participant
}

type RemoveParticipant struct {
	Participant Participant
}

type SetVideo struct {
	Video VideoState
}

type AddMessage struct {
	Message Message
}

type Command struct {
	Token CommandToken
}

// RoomSync hands a client the full session. It is only ever sent by the
// server.
type RoomSync struct {
	Session *Session
}

// Unknown carries an action of a kind this server does not understand.
type Unknown struct {
	Name    string
	Payload json.RawMessage
}

func (AddParticipant) Kind() Kind    { return KindAddParticipant }
func (RemoveParticipant) Kind() Kind { return KindRemoveParticipant }
func (SetVideo) Kind() Kind          { return KindSetVideo }
func (AddMessage) Kind() Kind        { return KindAddMessage }
func (Command) Kind() Kind           { return KindCommand }
func (RoomSync) Kind() Kind          { return KindRoomSync }
func (u Unknown) Kind() Kind         { return Kind(u.Name) }

func (a AddParticipant) Accept(v Visitor)    { v.VisitAddParticipant(a) }
func (a RemoveParticipant) Accept(v Visitor) { v.VisitRemoveParticipant(a) }
func (a SetVideo) Accept(v Visitor)          { v.VisitSetVideo(a) }
func (a AddMessage) Accept(v Visitor)        { v.VisitAddMessage(a) }
func (a Command) Accept(v Visitor)           { v.VisitCommand(a) }
func (a RoomSync) Accept(v Visitor)          { v.VisitRoomSync(a) }
func (a Unknown) Accept(v Visitor)           { v.VisitUnknown(a) }

type actionJSON struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload"`
}

func (a AddParticipant) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Participant})
}

func (a RemoveParticipant) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Participant})
}

func (a SetVideo) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Video})
}

func (a AddMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Message})
}

func (a Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Token})
}

func (a RoomSync) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: a.Session})
}

func (a Unknown) MarshalJSON() ([]byte, error) {
	payload := a.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	return json.Marshal(actionJSON{Kind: a.Kind(), Payload: payload})
}

// DecodeAction parses a {"kind", "payload"} object. Unrecognised kinds decode
// to Unknown; a recognised kind with an unusable payload is ErrMalformedAction.
func DecodeAction(data []byte) (Action, error) {
	var raw struct {
		Kind    Kind            `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAction, err)
	}

	switch raw.Kind {
	case KindAddParticipant:
		p, err := decodeParticipant(raw.Payload)
		if err != nil {
			return nil, err
		}
		return AddParticipant{Participant: p}, nil
	case KindRemoveParticipant:
		p, err := decodeParticipant(raw.Payload)
		if err != nil {
			return nil, err
		}
		return RemoveParticipant{Participant: p}, nil
	case KindSetVideo:
		var video VideoState
		if err := decodePayload(raw.Payload, &video); err != nil {
			return nil, err
		}
		return SetVideo{Video: video}, nil
	case KindAddMessage:
		var msg Message
		if err := decodePayload(raw.Payload, &msg); err != nil {
			return nil, err
		}
		return AddMessage{Message: msg}, nil
	case KindCommand:
		var token CommandToken
		if err := decodePayload(raw.Payload, &token); err != nil {
			return nil, err
		}
		return Command{Token: token}, nil
	case KindRoomSync:
		session := new(Session)
		if err := decodePayload(raw.Payload, session); err != nil {
			return nil, err
		}
		return RoomSync{Session: session}, nil
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrMalformedAction)
	default:
		return Unknown{Name: string(raw.Kind), Payload: raw.Payload}, nil
	}
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformedAction)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedAction, err)
	}

	return nil
}

func decodeParticipant(payload json.RawMessage) (Participant, error) {
	var p Participant
	if err := decodePayload(payload, &p); err != nil {
		return Participant{}, err
	}

	if p.ID == "" {
		return Participant{}, fmt.Errorf("%w: participant id is empty", ErrMalformedAction)
	}

	return p, nil
}
