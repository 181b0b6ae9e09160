package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ditchAPI/internal/types/notification"
)

func TestUpsertDeviceToken(t *testing.T) {
	tokens := upsertDeviceToken(nil, notification.DeviceToken{Token: "a", Platform: "ios"})
	tokens = upsertDeviceToken(tokens, notification.DeviceToken{Token: "b", Platform: "android"})
	tokens = upsertDeviceToken(tokens, notification.DeviceToken{Token: "a", Platform: "web"})

	assert.Len(t, tokens, 2)
	assert.Equal(t, "web", tokens[0].Platform)
	assert.Equal(t, "b", tokens[1].Token)
}
