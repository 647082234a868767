// internal/space/gateway.go
package space

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"spacebot/internal/auth"
)

// Wire payloads for the Space chat API. Every object carries the
// platform's className discriminator.
type channelIdentifier struct {
	ClassName string `json:"className"`
	ID        string `json:"id"`
}

type profileIdentifier struct {
	ClassName string `json:"className"`
	ID        string `json:"id"`
}

type messageRecipient struct {
	ClassName string            `json:"className"`
	Member    profileIdentifier `json:"member"`
}

type textContent struct {
	ClassName string `json:"className"`
	Text      string `json:"text"`
}

type channelMessage struct {
	Channel channelIdentifier `json:"channel"`
	Content textContent       `json:"content"`
}

type memberMessage struct {
	Recipient messageRecipient `json:"recipient"`
	Content   textContent      `json:"content"`
}

// Gateway posts chat messages to a Space organization on behalf of an
// authenticated session.
type Gateway struct {
	client *http.Client
	log    *zap.SugaredLogger
}

func NewGateway(client *http.Client, log *zap.SugaredLogger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{client: client, log: log}
}

// SendToChannel posts text into a channel.
func (g *Gateway) SendToChannel(ctx context.Context, session auth.Session, channelID, text string) error {
	return g.post(ctx, session, "/chats/messages/send-message", channelMessage{
		Channel: channelIdentifier{ClassName: "ChannelIdentifier.Id", ID: channelID},
		Content: textContent{ClassName: "ChatMessage.Text", Text: text},
	})
}

// SendToUser posts text into the direct-message channel of a member.
func (g *Gateway) SendToUser(ctx context.Context, session auth.Session, userID, text string) error {
	return g.post(ctx, session, "/chats/messages/send-message", memberMessage{
		Recipient: messageRecipient{
			ClassName: "MessageRecipient.Member",
			Member:    profileIdentifier{ClassName: "ProfileIdentifier.Id", ID: userID},
		},
		Content: textContent{ClassName: "ChatMessage.Text", Text: text},
	})
}

func (g *Gateway) post(ctx context.Context, session auth.Session, uri string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	full := strings.TrimRight(session.ServerURL, "/") + "/api/http" + uri
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, full, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("space send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		g.log.Errorw("space send failed", "status", resp.StatusCode, "uri", uri, "body", strings.TrimSpace(string(respBody)))
		return fmt.Errorf("space send: status %d", resp.StatusCode)
	}
	return nil
}
