package crud

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// UserService manages Users. It also contains the part of the authentication
// system that deals with the database, namely signup (hashing the password
// before storing) and credential checks. The http package is the "frontend"
// of the auth system, dealing with sessions and cookies.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted username and password for existence and
// correctness. It returns (nil, nil) both when the username does not exist
// and when the password is wrong, so callers cannot tell the two apart.
func (uv *userValidator) Authenticate(username, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByUsername(username)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, nil
		}
		return nil, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.imageURLsSetIfUnset)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(user)
}

// Update runs validations needed for updating a User record in the database.
// It will hash a password if one is provided (and will not complain if none is).
func (uv *userValidator) Update(user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired)
	if err != nil {
		return err
	}
	return uv.userGorm.Update(user)
}

// Delete runs validations needed for deleting an existing User record.
func (uv *userValidator) Delete(id int) error {
	if id <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user ID.")
	}
	return uv.userGorm.Delete(id)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// usernameNormalize trims surrounding whitespace off the username.
func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	return nil
}

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.Errorf(errs.EINVALID, "A username is required.")
	}
	return nil
}

// usernameIsAvail makes sure that a provided username is not yet taken.
func (uv *userValidator) usernameIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.ByUsername(user.Username)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil
		}
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.ECONFLICT, "Username already taken.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(user *domain.User) error {
	var existing domain.User
	err := uv.db.Where("email = ?", user.Email).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.ECONFLICT, "Email already taken.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 6 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 6 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 6 characters.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory for security reasons.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// imageURLsSetIfUnset fills in the default profile images if none were provided.
func (uv *userValidator) imageURLsSetIfUnset(user *domain.User) error {
	if user.ImageURL == "" {
		user.ImageURL = domain.DefaultImageURL
	}
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = domain.DefaultHeaderImageURL
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a User database record by username.
func (ug *userGorm) ByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := ug.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// Search retrieves all users whose username contains the query string,
// or all users if the query is empty, ordered by username.
func (ug *userGorm) Search(q string) ([]domain.User, error) {
	var users []domain.User
	db := ug.db.Order("username asc")
	if q != "" {
		db = db.Where("username LIKE ?", "%"+q+"%")
	}
	err := db.Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Create stores the data from the User object in a new database record.
// A unique constraint violation can still happen here despite the isAvail
// validations, when two signups with the same username or email race.
// The database settles the race, the loser gets a conflict error back.
func (ug *userGorm) Create(user *domain.User) error {
	err := ug.db.Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "Username or email already taken.")
		}
		return err
	}
	return nil
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(user *domain.User) error {
	err := ug.db.Save(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "Username or email already taken.")
		}
		return err
	}
	return nil
}

// Delete removes a user record along with everything hanging off it: their
// messages, the likes on those messages, the likes they gave, and their
// follow edges in both directions. It all happens in one transaction, so a
// failure along the way leaves the database as it was.
func (ug *userGorm) Delete(id int) error {
	return ug.db.Transaction(func(tx *gorm.DB) error {
		messageIds := tx.Table("messages").Select("id").Where("user_id = ?", id)
		if err := tx.Where("message_id IN (?)", messageIds).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&domain.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, id).Error
	})
}
