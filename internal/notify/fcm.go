package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// MessagingAPI is the subset of the FCM client used here.
type MessagingAPI interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM sends data-only messages through Firebase Cloud Messaging.
type FCM struct {
	client MessagingAPI
}

// NewFCM builds a messaging client from app.
func NewFCM(ctx context.Context, app *firebase.App) (*FCM, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: %w", err)
	}
	return NewFCMWithClient(client), nil
}

// NewFCMWithClient wraps an existing client.
func NewFCMWithClient(client MessagingAPI) *FCM {
	return &FCM{client: client}
}

// Send implements Sender. The returned id is the FCM message name.
func (f *FCM) Send(ctx context.Context, token string, data map[string]string) (string, error) {
	id, err := f.client.Send(ctx, &messaging.Message{
		Token: token,
		Data:  data,
	})
	if err != nil {
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return id, nil
}
