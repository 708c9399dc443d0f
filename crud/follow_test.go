package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestFollowService_CreateAndDelete(t *testing.T) {
	s := testServices(t)
	u1 := signup(t, s, "testuser1")
	u2 := signup(t, s, "testuser2")

	require.NoError(t, s.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))

	following, err := s.Follow.Following(u1.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, u2.ID, following[0].ID)

	followers, err := s.Follow.Followers(u2.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, u1.ID, followers[0].ID)

	// The edge is directional.
	assert.True(t, s.Follow.IsFollowing(u1.ID, u2.ID))
	assert.False(t, s.Follow.IsFollowing(u2.ID, u1.ID))

	require.NoError(t, s.Follow.Delete(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))

	following, err = s.Follow.Following(u1.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
	assert.False(t, s.Follow.IsFollowing(u1.ID, u2.ID))
}

func TestFollowService_JoinRow(t *testing.T) {
	s := testServices(t)
	u1 := signup(t, s, "testuser1")
	u2 := signup(t, s, "testuser2")

	require.NoError(t, s.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))

	// Exactly one join row, with (followed_id, follower_id) the right way around.
	var rows []domain.Follow
	require.NoError(t, s.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, u2.ID, rows[0].FollowedID)
	assert.Equal(t, u1.ID, rows[0].FollowerID)
}

func TestFollowService_Create_Validations(t *testing.T) {
	s := testServices(t)
	u1 := signup(t, s, "testuser1")
	u2 := signup(t, s, "testuser2")

	err := s.Follow.Create(&domain.Follow{FollowedID: u1.ID, FollowerID: u1.ID})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = s.Follow.Create(&domain.Follow{FollowedID: 9999, FollowerID: u1.ID})
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	require.NoError(t, s.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))
	err = s.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	// Still exactly one edge.
	following, err := s.Follow.Following(u1.ID)
	require.NoError(t, err)
	assert.Len(t, following, 1)
}

func TestFollowService_Delete_NotFollowing(t *testing.T) {
	s := testServices(t)
	u1 := signup(t, s, "testuser1")
	u2 := signup(t, s, "testuser2")

	err := s.Follow.Delete(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestFollowService_Following_OrderedByInsertion(t *testing.T) {
	s := testServices(t)
	u1 := signup(t, s, "testuser1")
	u2 := signup(t, s, "testuser2")
	u3 := signup(t, s, "testuser3")

	require.NoError(t, s.Follow.Create(&domain.Follow{FollowedID: u3.ID, FollowerID: u1.ID}))
	require.NoError(t, s.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))

	following, err := s.Follow.Following(u1.ID)
	require.NoError(t, err)
	require.Len(t, following, 2)
	assert.Equal(t, u3.ID, following[0].ID)
	assert.Equal(t, u2.ID, following[1].ID)
}
