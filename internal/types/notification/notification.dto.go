package notification

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDevice = errors.New("invalid device")

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (r *RegisterDeviceRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidDevice)
	}
	switch r.Platform {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return nil
	}
	return fmt.Errorf("%w: platform must be one of ios, android, web", ErrInvalidDevice)
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
	TotalCount    int             `json:"totalCount"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}
