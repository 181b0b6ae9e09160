package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"ditchAPI/internal/logger"
	ntypes "ditchAPI/internal/types/notification"
)

var ErrAllFailed = errors.New("all push notifications failed")

// sender is the slice of *messaging.Client the service uses.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client sender
	log    *logger.Logger
}

// NewFCMService initializes the Firebase messaging client. Credentials come
// from FCM_SERVICE_ACCOUNT_JSON (base64 encoded) when set, otherwise from the
// service account file at localFilePath.
func NewFCMService(ctx context.Context, localFilePath string, log *logger.Logger) (*FCMService, error) {
	var opt option.ClientOption

	if encoded := os.Getenv("FCM_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Info("fcm credentials loaded from environment")
	} else {
		if _, err := os.Stat(localFilePath); err != nil {
			return nil, fmt.Errorf("firebase credentials not found at %s: %w", localFilePath, err)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Info("fcm credentials loaded from file", "path", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMService{client: client, log: log}, nil
}

func newMessage(t ntypes.DeviceToken, title, body string, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token:        t.Token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}

	switch t.Platform {
	case ntypes.PlatformIOS:
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	case ntypes.PlatformWeb:
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{Title: title, Body: body},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		}
	}
	return msg
}

// SendPush sends one message per token. Sending individually avoids the
// deprecated batch endpoint. It fails only when every token failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []ntypes.DeviceToken, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	sent, failed := 0, 0
	for _, t := range tokens {
		if t.Token == "" {
			continue
		}
		if _, err := s.client.Send(ctx, newMessage(t, title, body, data)); err != nil {
			s.log.Warn("fcm send failed", "platform", t.Platform, "error", err)
			failed++
			continue
		}
		sent++
	}

	s.log.Debug("fcm batch done", "sent", sent, "failed", failed)
	if sent == 0 && failed > 0 {
		return fmt.Errorf("%w: %d tokens", ErrAllFailed, failed)
	}
	return nil
}
