package domain

import "time"

// Like represents a many-to-many relationship between a User and a Message.
// A Like is created when a user likes a message and destroyed when they like
// it a second time. The (user, message) pair is unique.
type Like struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	MessageID int       `json:"message_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	Message   Message   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// Toggle flips the like state of the given (user, message) pair.
	// It returns true if the pair is liked after the call, false if not.
	Toggle(userId, messageId int) (bool, error)
	// MessagesByUserID returns the messages the given user has liked,
	// in the order the likes were created.
	MessagesByUserID(userId int) ([]Message, error)
	IsLiked(userId, messageId int) bool
	CountByMessageID(messageId int) (int, error)
}
