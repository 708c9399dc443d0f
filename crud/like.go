package crud

import (
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// Unlike the other services there is no validator layer, the only invariant
// (one like per user and message) is what Toggle is built around.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeGorm{
			db: db,
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle flips the like state of a (user, message) pair. If no Like record
// exists for the pair one is created, if one exists it is deleted. The check
// and the write run in one transaction so the flip is atomic.
// It returns true if the pair is liked after the call.
func (lg *likeGorm) Toggle(userId, messageId int) (bool, error) {
	liked := false
	err := lg.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Like
		err := tx.First(&existing, "user_id = ? AND message_id = ?", userId, messageId).Error
		if err == nil {
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = tx.First(&domain.Message{}, "id = ?", messageId).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The liked message does not exist.")
			}
			return err
		}
		liked = true
		return tx.Create(&domain.Like{UserID: userId, MessageID: messageId}).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// MessagesByUserID retrieves the messages a user has liked, in the order the
// likes were created, regardless of who owns the messages.
func (lg *likeGorm) MessagesByUserID(userId int) ([]domain.Message, error) {
	var messages []domain.Message
	err := lg.db.
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userId).
		Preload("User").
		Order("likes.id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// IsLiked takes a user ID and a message ID and returns a boolean expressing
// whether the given user likes the given message.
func (lg *likeGorm) IsLiked(userId, messageId int) bool {
	err := lg.db.First(&domain.Like{}, "user_id = ? AND message_id = ?", userId, messageId).Error
	return err == nil
}

// CountByMessageID returns the number of likes a message has.
func (lg *likeGorm) CountByMessageID(messageId int) (int, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).Where("message_id = ?", messageId).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
