package notify

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

// Console prints the message instead of sending it. It is meant for dry runs
// and local testing of build hooks.
type Console struct {
	W io.Writer
}

type consoleMessage struct {
	ID    string            `json:"id"`
	Token string            `json:"token"`
	Data  map[string]string `json:"data"`
}

// Send implements Sender and returns a random delivery id.
func (c Console) Send(_ context.Context, token string, data map[string]string) (string, error) {
	msg := consoleMessage{ID: "console-" + uuid.NewString(), Token: redact(token), Data: data}
	if c.W != nil {
		enc := json.NewEncoder(c.W)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(msg); err != nil {
			return "", err
		}
	}
	return msg.ID, nil
}

// redact keeps only the head and tail of a device token.
func redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
