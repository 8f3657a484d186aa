package domain

import "time"

// Comment is a message on a ticket thread. Internal comments are staff-only.
type Comment struct {
	ID         string
	TicketID   string
	Content    string
	AuthorID   string
	IsInternal bool
	CreatedAt  time.Time
}

// Attachment stores metadata for a file uploaded to a ticket.
type Attachment struct {
	ID         string
	TicketID   string
	FileName   string
	FilePath   string
	FileURL    string
	FileSize   int64
	FileType   string
	UploadedBy string
	CreatedAt  time.Time
}
