package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/clerk"
	"ditchAPI/internal/types/profile"
)

const webhookTolerance = 5 * time.Minute

var errBadSignature = errors.New("invalid webhook signature")

type accountService interface {
	UpsertProfile(ctx context.Context, clerkID string, req *profile.UpsertProfileRequest) (*profile.Profile, error)
	DeleteProfile(ctx context.Context, clerkID string) error
}

// WebhookHandler keeps profiles in step with Clerk's user lifecycle events.
type WebhookHandler struct {
	accounts accountService
	secret   []byte
	log      *logger.Logger
	now      func() time.Time
}

// NewWebhookHandler takes the signing secret as shown in the Clerk dashboard
// ("whsec_" followed by base64).
func NewWebhookHandler(accounts accountService, secret string, log *logger.Logger) (*WebhookHandler, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil || len(key) == 0 {
		return nil, fmt.Errorf("invalid webhook secret")
	}
	return &WebhookHandler{accounts: accounts, secret: key, log: log, now: time.Now}, nil
}

// POST /webhooks/clerk
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verify(r.Header, body); err != nil {
		h.log.Warn("clerk webhook rejected", "error", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerk.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	switch event.Type {
	case clerk.EventUserCreated, clerk.EventUserUpdated:
		err = h.syncUser(ctx, event.Data)
	case clerk.EventUserDeleted:
		err = h.deleteUser(ctx, event.Data)
	default:
		h.log.Debug("unhandled clerk webhook", "type", event.Type)
	}
	if err != nil {
		h.log.Error("clerk webhook failed", "type", event.Type, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) syncUser(ctx context.Context, data json.RawMessage) error {
	var u clerk.UserData
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	if u.ID == "" {
		return fmt.Errorf("user event without id")
	}

	req := &profile.UpsertProfileRequest{}
	if email := u.PrimaryEmail(); email != "" {
		req.Email = &email
	}
	if name := u.FullName(); name != "" {
		req.FullName = &name
	}

	if _, err := h.accounts.UpsertProfile(ctx, u.ID, req); err != nil {
		return err
	}
	h.log.Info("profile synced from clerk", "clerk_id", u.ID)
	return nil
}

func (h *WebhookHandler) deleteUser(ctx context.Context, data json.RawMessage) error {
	var u struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	if err := h.accounts.DeleteProfile(ctx, u.ID); err != nil {
		return err
	}
	h.log.Info("profile deleted", "clerk_id", u.ID)
	return nil
}

// verify checks the svix signature headers Clerk sends: an HMAC-SHA256 over
// "id.timestamp.body", base64 encoded, with possibly several space separated
// "v1,<sig>" candidates.
func (h *WebhookHandler) verify(header http.Header, body []byte) error {
	id := header.Get("svix-id")
	ts := header.Get("svix-timestamp")
	sigs := header.Get("svix-signature")
	if id == "" || ts == "" || sigs == "" {
		return fmt.Errorf("%w: missing headers", errBadSignature)
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errBadSignature)
	}
	if d := h.now().Sub(time.Unix(sec, 0)); d > webhookTolerance || d < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errBadSignature)
	}

	expected := sign(h.secret, id, ts, body)
	for _, candidate := range strings.Fields(sigs) {
		version, sig, ok := strings.Cut(candidate, ",")
		if ok && version == "v1" && hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errBadSignature
}

func sign(key []byte, id, ts string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + ts + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
