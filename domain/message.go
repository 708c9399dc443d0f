package domain

import "time"

// MessageMaxLength is the maximum number of characters a message may have.
const MessageMaxLength = 140

type Message struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"not null;index"`
	User   User   `json:"user"`
	Text   string `json:"text" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Likes []Like `json:"likes" gorm:"constraint:OnDelete:CASCADE"`
}

// MessageService is a set of methods to manipulate and work with the Message model.
type MessageService interface {
	ByID(id int) (*Message, error)
	ByUserID(userId int) ([]Message, error)
	// Feed returns the messages shown on the home timeline of the given
	// user: their own messages plus those of everyone they follow.
	Feed(userId int) ([]Message, error)
	Create(message *Message) error
	Delete(message *Message) error
}
