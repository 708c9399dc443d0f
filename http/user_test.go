package http

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
)

func TestUsersIndex(t *testing.T) {
	ts, services := newTestApp(t)
	createUser(t, services, "testuser")
	createUser(t, services, "testuser1")
	createUser(t, services, "testuser2")
	c := newClient(t)

	// Works the same for guests and logged in users.
	resp, err := c.Get(ts.URL + "/users")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<p>@testuser</p>")
	assert.Contains(t, body, "<p>@testuser1</p>")
	assert.Contains(t, body, "<p>@testuser2</p>")

	// q filters by username substring.
	resp, err = c.Get(ts.URL + "/users?q=1")
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.NotContains(t, body, "<p>@testuser</p>")
	assert.Contains(t, body, "<p>@testuser1</p>")
	assert.NotContains(t, body, "<p>@testuser2</p>")
}

func TestUserShow_Guest(t *testing.T) {
	ts, services := newTestApp(t)
	u1 := createUser(t, services, "testuser1")
	u2 := createUser(t, services, "testuser2")
	require.NoError(t, services.Message.Create(&domain.Message{UserID: u1.ID, Text: "first message from testuser1"}))
	require.NoError(t, services.Message.Create(&domain.Message{UserID: u2.ID, Text: "first message from testuser2"}))
	c := newClient(t)

	resp, err := c.Get(ts.URL + fmt.Sprintf("/users/%d", u1.ID))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Only this user's messages show up.
	assert.Contains(t, body, "<p>first message from testuser1</p>")
	assert.NotContains(t, body, "<p>first message from testuser2</p>")

	// Guests get no profile controls.
	assert.NotContains(t, body, "Edit Profile")
	assert.NotContains(t, body, ">Follow<")
	assert.NotContains(t, body, ">Unfollow<")
}

func TestUserShow_ProfileControls(t *testing.T) {
	ts, services := newTestApp(t)
	u1 := createUser(t, services, "testuser1")
	u2 := createUser(t, services, "testuser2")
	c := newClient(t)
	loginHTTP(t, ts, c, "testuser1", "password")

	// Own profile carries the edit button, no follow button.
	resp, err := c.Get(ts.URL + fmt.Sprintf("/users/%d", u1.ID))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Edit Profile")
	assert.NotContains(t, body, ">Follow<")

	// Someone else's profile carries a follow button instead.
	resp, err = c.Get(ts.URL + fmt.Sprintf("/users/%d", u2.ID))
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.NotContains(t, body, "Edit Profile")
	assert.Contains(t, body, ">Follow<")

	// And an unfollow button once the edge exists.
	require.NoError(t, services.Follow.Create(&domain.Follow{FollowedID: u2.ID, FollowerID: u1.ID}))
	resp, err = c.Get(ts.URL + fmt.Sprintf("/users/%d", u2.ID))
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Contains(t, body, ">Unfollow<")
}

func TestUserShow_NotFound(t *testing.T) {
	ts, _ := newTestApp(t)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/users/9999")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found.")
}

func TestFollowUnfollow(t *testing.T) {
	ts, services := newTestApp(t)
	u2 := createUser(t, services, "testuser2")
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser1")
	u1, err := services.User.ByUsername("testuser1")
	require.NoError(t, err)

	// Follow: the edge appears and the following page lists the user.
	resp, err := c.PostForm(ts.URL+fmt.Sprintf("/users/follow/%d", u2.ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	following, err := services.Follow.Following(u1.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, u2.ID, following[0].ID)

	resp, err = c.Get(ts.URL + fmt.Sprintf("/users/%d/following", u1.ID))
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "<p>@testuser2</p>")

	// And the other direction shows up on the followers page.
	resp, err = c.Get(ts.URL + fmt.Sprintf("/users/%d/followers", u2.ID))
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "<p>@testuser1</p>")

	// Unfollow: back to zero.
	resp, err = c.PostForm(ts.URL+fmt.Sprintf("/users/stop-following/%d", u2.ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	following, err = services.Follow.Following(u1.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestProfileUpdate(t *testing.T) {
	ts, services := newTestApp(t)
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)

	stopRedirects(c)
	resp, err := c.PostForm(ts.URL+"/users/profile", url.Values{
		"username":  {"testuser"},
		"email":     {"testuser@test.com"},
		"image_url": {user.ImageURL},
		"location":  {"Berlin"},
		"bio":       {"Now with a bio."},
		"password":  {"password"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/users/%d", user.ID), resp.Header.Get("Location"))

	updated, err := services.User.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, "Now with a bio.", updated.Bio)
}

func TestProfileUpdate_WrongPassword(t *testing.T) {
	ts, services := newTestApp(t)
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)

	resp, err := c.PostForm(ts.URL+"/users/profile", url.Values{
		"username": {"testuser"},
		"email":    {"testuser@test.com"},
		"bio":      {"Should not stick."},
		"password": {"wrongpassword"},
	})
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")

	unchanged, err := services.User.ByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unchanged.Bio)
}

func TestDeleteUser(t *testing.T) {
	ts, services := newTestApp(t)
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)
	require.NoError(t, services.Message.Create(&domain.Message{UserID: user.ID, Text: "soon gone"}))

	stopRedirects(c)
	resp, err := c.PostForm(ts.URL+"/users/delete", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	// Account and messages are gone, and the session is over.
	_, err = services.User.ByID(user.ID)
	require.Error(t, err)
	messages, err := services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	resp, err = c.Get(ts.URL + "/messages/new")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
