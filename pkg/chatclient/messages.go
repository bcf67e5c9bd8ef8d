package chatclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SendMessage submits a question. When sessionId is nil the server routes it
// to the caller's active session. An empty question fails locally, before
// any network traffic.
func (c *Client) SendMessage(ctx context.Context, sessionId *uuid.UUID, req SendMessageRequest) (*Exchange, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, &ValidationError{Message: "question must not be empty"}
	}

	path := "/chat/v1/message"
	if sessionId != nil {
		path += "?session_id=" + sessionId.String()
	}

	var res envelope[*Exchange]
	if err := c.post(ctx, path, req, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// SessionMessages pages through a session's history in chronological order.
// Pass the previous page's NextCursor to continue; an empty cursor starts
// from the beginning.
func (c *Client) SessionMessages(ctx context.Context, sessionId uuid.UUID, limit int, cursor string) (*MessagesPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	path := fmt.Sprintf("/chat/v1/session/%s/messages", sessionId)
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var res envelope[*MessagesPage]
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}
