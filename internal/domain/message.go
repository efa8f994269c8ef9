package domain

type Message struct {
	Author   Participant `json:"author"`
	AuthorID string      `json:"authorId"`
	Content  string      `json:"content"`
}

func NewMessage(author Participant, content string) Message {
	return Message{
		Author:   author,
		AuthorID: author.ID,
		Content:  content,
	}
}
