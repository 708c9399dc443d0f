package domain

import "time"

// Default profile images used when a user signs up without providing any.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User is an account in the app. The Password field only ever holds the raw
// password in memory during signup or a profile edit, it is never persisted.
// What gets stored is the bcrypt hash in PasswordHash.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-" gorm:"not null"`

	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages" gorm:"constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"likes" gorm:"constraint:OnDelete:CASCADE"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	// Authenticate checks a username / password pair. It returns (nil, nil)
	// for both "no such user" and "wrong password", deliberately not telling
	// the caller which of the two failed. A non-nil error means the check
	// itself could not be performed.
	Authenticate(username, password string) (*User, error)
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	Search(q string) ([]User, error)
	Create(user *User) error
	Update(user *User) error
	Delete(id int) error
}
