package dto

import "time"

// CommentRequest payload for add and edit.
type CommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse describes a ticket comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
