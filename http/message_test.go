package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
)

func TestMessageLifecycle(t *testing.T) {
	ts, services := newTestApp(t)
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)

	resp, err := c.Get(ts.URL + "/messages/new")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stopRedirects(c)
	resp, err = c.PostForm(ts.URL+"/messages/new", url.Values{"text": {"Hello"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/users/%d", user.ID), resp.Header.Get("Location"))

	messages, err := services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	followRedirects(c)
	resp, err = c.Get(ts.URL + fmt.Sprintf("/messages/%d", messages[0].ID))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<p>Hello</p>")
	assert.Contains(t, body, "@testuser")

	resp, err = c.PostForm(ts.URL+fmt.Sprintf("/messages/%d/delete", messages[0].ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()

	messages, err = services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCreateMessage_TooLong(t *testing.T) {
	ts, services := newTestApp(t)
	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)

	long := strings.Repeat("x", domain.MessageMaxLength+1)
	resp, err := c.PostForm(ts.URL+"/messages/new", url.Values{"text": {long}})
	require.NoError(t, err)
	body := readBody(t, resp)
	// The form comes back with the validation message, nothing is saved.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "140")

	messages, err := services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestDeleteMessage_NotOwner(t *testing.T) {
	ts, services := newTestApp(t)
	owner := createUser(t, services, "owner")
	message := &domain.Message{UserID: owner.ID, Text: "not yours"}
	require.NoError(t, services.Message.Create(message))

	c := newClient(t)
	signupHTTP(t, ts, c, "intruder")

	stopRedirects(c)
	resp, err := c.PostForm(ts.URL+fmt.Sprintf("/messages/%d/delete", message.ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// The message survives and the warning shows up.
	_, err = services.Message.ByID(message.ID)
	require.NoError(t, err)

	followRedirects(c)
	resp, err = c.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
}

func TestToggleLikeOverHTTP(t *testing.T) {
	ts, services := newTestApp(t)
	author := createUser(t, services, "author")
	message := &domain.Message{UserID: author.ID, Text: "like me"}
	require.NoError(t, services.Message.Create(message))

	c := newClient(t)
	signupHTTP(t, ts, c, "testuser")
	user, err := services.User.ByUsername("testuser")
	require.NoError(t, err)

	resp, err := c.PostForm(ts.URL+fmt.Sprintf("/users/add_like/%d", message.ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, services.Like.IsLiked(user.ID, message.ID))

	// The likes page lists the liked message.
	resp, err = c.Get(ts.URL + fmt.Sprintf("/users/%d/likes", user.ID))
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "<p>like me</p>")

	// A second toggle takes the like back.
	resp, err = c.PostForm(ts.URL+fmt.Sprintf("/users/add_like/%d", message.ID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, services.Like.IsLiked(user.ID, message.ID))
	count, err := services.Like.CountByMessageID(message.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestShowMessage_NotFound(t *testing.T) {
	ts, _ := newTestApp(t)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/messages/9999")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found.")
}
