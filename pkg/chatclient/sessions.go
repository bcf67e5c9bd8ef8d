package chatclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ActiveSession returns the caller's active session. The server creates one
// if none exists, so this never returns NotFoundError for a valid principal.
func (c *Client) ActiveSession(ctx context.Context) (*Session, error) {
	var res envelope[*Session]
	if err := c.get(ctx, "/chat/v1/session", &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// NewSession starts a fresh session and makes it the active one.
func (c *Client) NewSession(ctx context.Context) (*Session, error) {
	var res envelope[*Session]
	if err := c.post(ctx, "/chat/v1/session/new", nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ListSessions returns the caller's sessions, newest first. Archived
// sessions are excluded unless includeArchived is set. A limit of 0 uses the
// server default.
func (c *Client) ListSessions(ctx context.Context, includeArchived bool, limit int) ([]*Session, error) {
	q := url.Values{}
	if includeArchived {
		q.Set("include_archived", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/chat/v1/sessions"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var res envelope[[]*Session]
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// RenameSession sets a session's title.
func (c *Client) RenameSession(ctx context.Context, sessionId uuid.UUID, title string) (*Session, error) {
	var res envelope[*Session]
	body := map[string]string{"title": title}
	if err := c.patch(ctx, fmt.Sprintf("/chat/v1/session/%s", sessionId), body, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ArchiveSession retires a session from listings. Archiving an already
// archived session succeeds without effect.
func (c *Client) ArchiveSession(ctx context.Context, sessionId uuid.UUID) (*Session, error) {
	var res envelope[*Session]
	if err := c.post(ctx, fmt.Sprintf("/chat/v1/session/%s/archive", sessionId), nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// DeleteSession permanently removes a session and all of its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	return c.delete(ctx, fmt.Sprintf("/chat/v1/session/%s", sessionId))
}
