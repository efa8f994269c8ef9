package session

import (
	"fmt"

	"github.com/sharetube/watch-together/internal/domain"
)

// Assistant authors the announcements produced for commands.
var Assistant = domain.Participant{
	ID:     "6969",
	Name:   "ChadBot",
	Avatar: "https://i1.sndcdn.com/artworks-sUZuSm54AvHM5DzC-sRJf4A-t500x500.jpg",
}

var commandMessages = map[domain.CommandToken]string{
	domain.CommandPause: "video is paused sir",
	domain.CommandPlay:  "video is playing sir",
	domain.CommandSet:   "video is set sir",
}

// Rewrite turns a command into the assistant's add-message announcement.
// Other actions are returned unchanged. An unrecognised token yields
// ErrUnknownCommand and no action.
func Rewrite(a domain.Action) (domain.Action, error) {
	cmd, ok := a.(domain.Command)
	if !ok {
		return a, nil
	}

	content, ok := commandMessages[cmd.Token]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Token)
	}

	return domain.AddMessage{Message: domain.NewMessage(Assistant, content)}, nil
}
