package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two users.
// A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowedID is the ID of
// the user that is being followed. The pair is unique, there is at most one edge
// between any two users in a given direction.
type Follow struct {
	ID         int       `json:"id"`
	FollowedID int       `json:"-" gorm:"not null;uniqueIndex:idx_follows_edge"`
	Followed   User      `json:"followed"`
	FollowerID int       `json:"-" gorm:"not null;uniqueIndex:idx_follows_edge"`
	Follower   User      `json:"follower"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(follow *Follow) error
	Delete(follow *Follow) error
	// Following returns the users the given user follows, in the order the
	// follows were created. Followers is the reverse direction.
	Following(userId int) ([]User, error)
	Followers(userId int) ([]User, error)
	IsFollowing(followerId, followedId int) bool
}
