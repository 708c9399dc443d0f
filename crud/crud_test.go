package crud

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/domain"
)

// testDB opens a fresh in-memory database for one test. The database is
// named after the test so parallel tests never share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		domain.User{},
		domain.Message{},
		domain.Follow{},
		domain.Like{},
	))
	return db
}

// testServices wires all crud services onto one test database.
func testServices(t *testing.T) *Services {
	t.Helper()
	s, err := NewServices(testDB(t),
		WithUser("test-pepper"),
		WithMessage(),
		WithFollow(),
		WithLike(),
	)
	require.NoError(t, err)
	return s
}

// signup creates a user through the regular signup path, raw password in,
// hash out.
func signup(t *testing.T, s *Services, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	}
	require.NoError(t, s.User.Create(user))
	return user
}

// post creates a message owned by the given user.
func post(t *testing.T, s *Services, user *domain.User, text string) *domain.Message {
	t.Helper()
	message := &domain.Message{UserID: user.ID, Text: text}
	require.NoError(t, s.Message.Create(message))
	return message
}
