package domain

import (
	"encoding/json"
)

// Session is the canonical state of one watch-together room. It is not safe
// for concurrent use; callers serialize access per session.
type Session struct {
	id           string
	ownerID      string
	participants *Roster
	video        *VideoState
	messages     []Message
}

func NewSession(id, ownerID string) *Session {
	return &Session{
		id:           id,
		ownerID:      ownerID,
		participants: NewRoster(),
		messages:     make([]Message, 0),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) OwnerID() string {
	return s.ownerID
}

func (s *Session) IsOwner(participantID string) bool {
	return s.ownerID == participantID
}

func (s *Session) HasParticipant(id string) bool {
	return s.participants.Has(id)
}

func (s *Session) Participants() []Participant {
	return s.participants.List()
}

// Video returns a copy of the current video state and whether one was ever
// set.
func (s *Session) Video() (VideoState, bool) {
	if s.video == nil {
		return VideoState{}, false
	}

	return s.video.Clone(), true
}

func (s *Session) Messages() []Message {
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	return messages
}

// Clone returns a deep copy detached from later mutations of s.
func (s *Session) Clone() *Session {
	clone := &Session{
		id:           s.id,
		ownerID:      s.ownerID,
		participants: s.participants.Clone(),
		messages:     s.Messages(),
	}
	if s.video != nil {
		video := s.video.Clone()
		clone.video = &video
	}

	return clone
}

// Apply runs the reducer: exactly one branch fires per action, and kinds
// without a session field (command, room-sync, unknown) leave s unchanged.
func (s *Session) Apply(a Action) {
	a.Accept(reducer{s})
}

type reducer struct {
	s *Session
}

func (r reducer) VisitAddParticipant(a AddParticipant) {
	r.s.participants.Add(a.Participant)
}

func (r reducer) VisitRemoveParticipant(a RemoveParticipant) {
	r.s.participants.Remove(a.Participant.ID)
}

func (r reducer) VisitSetVideo(a SetVideo) {
	video := a.Video.Clone()
	r.s.video = &video
}

func (r reducer) VisitAddMessage(a AddMessage) {
	r.s.messages = append(r.s.messages, a.Message)
}

func (reducer) VisitCommand(Command)   {}
func (reducer) VisitRoomSync(RoomSync) {}
func (reducer) VisitUnknown(Unknown)   {}

type sessionJSON struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"ownerId"`
	Participants *Roster     `json:"participants"`
	Video        *VideoState `json:"video,omitempty"`
	Messages     []Message   `json:"messages"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		ID:           s.id,
		OwnerID:      s.ownerID,
		Participants: s.participants,
		Video:        s.video,
		Messages:     s.messages,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = *NewSession(raw.ID, raw.OwnerID)
	if raw.Participants != nil {
		s.participants = raw.Participants
	}
	s.video = raw.Video
	if raw.Messages != nil {
		s.messages = raw.Messages
	}

	return nil
}
