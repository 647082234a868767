// internal/dispatch/payload.go
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownPayload is returned for className values the bot does not
// handle. Unknown tags are rejected, not ignored.
var ErrUnknownPayload = errors.New("unknown payload class")

// The webhook body is discriminated by className. DecodePayload turns it
// into one of the closed set of payload types below.
type InitPayload struct {
	ClientID     string
	ClientSecret string
	ServerURL    string
	UserID       string
}

type MessagePayload struct {
	ClientID  string
	ChannelID string
	Text      string
}

type ListCommandsPayload struct{}

// DecodePayload parses a raw webhook body into its payload type.
func DecodePayload(raw []byte) (any, error) {
	var envelope struct {
		ClassName    string `json:"className"`
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
		ServerURL    string `json:"serverUrl"`
		UserID       string `json:"userId"`
		Message      struct {
			ChannelID string `json:"channelId"`
			Body      struct {
				Text string `json:"text"`
			} `json:"body"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("payload decode: %w", err)
	}

	switch envelope.ClassName {
	case "InitPayload":
		return InitPayload{
			ClientID:     envelope.ClientID,
			ClientSecret: envelope.ClientSecret,
			ServerURL:    envelope.ServerURL,
			UserID:       envelope.UserID,
		}, nil
	case "MessagePayload":
		return MessagePayload{
			ClientID:  envelope.ClientID,
			ChannelID: envelope.Message.ChannelID,
			Text:      envelope.Message.Body.Text,
		}, nil
	case "ListCommandsPayload":
		return ListCommandsPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayload, envelope.ClassName)
	}
}
