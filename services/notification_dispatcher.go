package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/notification"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

// DeliveryStore is the part of the notification store the dispatcher needs.
type DeliveryStore interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error)
	MarkSent(ctx context.Context, notificationID uuid.UUID) error
	MarkFailed(ctx context.Context, notificationID uuid.UUID, reason string, maxRetries int, backoff time.Duration) (bool, error)
	ClaimPending(ctx context.Context, grace, lease time.Duration, limit int) ([]*notification.Notification, error)
	PurgeRead(ctx context.Context, age time.Duration) (int64, error)
}

type DispatcherOptions struct {
	Workers      int
	QueueSize    int
	EnqueueWait  time.Duration
	JobTimeout   time.Duration
	CleanupEvery time.Duration
	RetainRead   time.Duration
	// PickupEvery is how often pending notifications are re-read from the
	// store. Rows younger than PickupGrace are left to the in-memory queue.
	PickupEvery  time.Duration
	PickupGrace  time.Duration
	PickupLease  time.Duration
	PickupBatch  int
	MaxRetries   int
	RetryBackoff time.Duration
}

func (o DispatcherOptions) withDefaults() DispatcherOptions {
	if o.Workers <= 0 {
		o.Workers = 5
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 100
	}
	if o.EnqueueWait <= 0 {
		o.EnqueueWait = 5 * time.Second
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = 10 * time.Second
	}
	if o.CleanupEvery <= 0 {
		o.CleanupEvery = 24 * time.Hour
	}
	if o.RetainRead <= 0 {
		o.RetainRead = 90 * 24 * time.Hour
	}
	if o.PickupEvery <= 0 {
		o.PickupEvery = time.Minute
	}
	if o.PickupGrace <= 0 {
		o.PickupGrace = 2 * time.Minute
	}
	if o.PickupLease <= 0 {
		o.PickupLease = 5 * time.Minute
	}
	if o.PickupBatch <= 0 {
		o.PickupBatch = 100
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 5 * time.Minute
	}
	return o
}

// NotificationDispatcher delivers newly recorded notifications to the user's
// devices from a pool of workers.
type NotificationDispatcher struct {
	store    DeliveryStore
	push     PushProvider
	log      *logger.Logger
	opts     DispatcherOptions
	jobQueue chan *notification.Notification
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNotificationDispatcher starts the workers, the pending pickup loop and
// the cleanup loop. push may be nil, in which case notifications are only
// kept in-app.
func NewNotificationDispatcher(store DeliveryStore, push PushProvider, log *logger.Logger, opts DispatcherOptions) *NotificationDispatcher {
	opts = opts.withDefaults()
	d := &NotificationDispatcher{
		store:    store,
		push:     push,
		log:      log,
		opts:     opts,
		jobQueue: make(chan *notification.Notification, opts.QueueSize),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.wg.Add(2)
	go d.pickupLoop()
	go d.cleanupLoop()

	return d
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.jobQueue:
			d.deliver(n)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) deliver(n *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.JobTimeout)
	defer cancel()

	prefs, err := d.store.GetPreferences(ctx, n.UserID)
	if err != nil {
		d.log.Error("load preferences failed", "notification", n.ID, "user", n.UserID, "error", err)
		d.markFailed(ctx, n, err.Error())
		return
	}

	if prefs.PushEnabled && len(prefs.DeviceTokens) > 0 && d.push != nil {
		if err := d.push.SendPush(ctx, prefs.DeviceTokens, n.Title, n.Message, n.PushData()); err != nil {
			d.log.Warn("push failed", "notification", n.ID, "user", n.UserID, "error", err)
			pushDeliveries.WithLabelValues("failed").Inc()
			d.markFailed(ctx, n, err.Error())
			return
		}
		pushDeliveries.WithLabelValues("sent").Inc()
	} else {
		d.log.Debug("skipping push", "notification", n.ID,
			"enabled", prefs.PushEnabled, "tokens", len(prefs.DeviceTokens), "provider", d.push != nil)
		pushDeliveries.WithLabelValues("skipped").Inc()
	}

	if err := d.store.MarkSent(ctx, n.ID); err != nil {
		d.log.Error("mark sent failed", "notification", n.ID, "error", err)
	}
}

func (d *NotificationDispatcher) markFailed(ctx context.Context, n *notification.Notification, reason string) {
	retrying, err := d.store.MarkFailed(ctx, n.ID, reason, d.opts.MaxRetries, d.opts.RetryBackoff)
	if err != nil {
		d.log.Error("mark failed failed", "notification", n.ID, "error", err)
		return
	}
	if retrying {
		d.log.Info("push retry scheduled", "notification", n.ID, "in", d.opts.RetryBackoff)
	}
}

// Enqueue queues n for delivery, waiting up to EnqueueWait for room. It
// reports whether the notification was queued.
func (d *NotificationDispatcher) Enqueue(n *notification.Notification) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	timer := time.NewTimer(d.opts.EnqueueWait)
	defer timer.Stop()

	select {
	case d.jobQueue <- n:
		return true
	case <-d.stopChan:
		return false
	case <-timer.C:
		d.log.Warn("dispatch queue full", "notification", n.ID)
		return false
	}
}

func (d *NotificationDispatcher) pickupLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.opts.PickupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.pickup()
		case <-d.stopChan:
			return
		}
	}
}

// pickup re-queues pending notifications the store still holds: ones whose
// enqueue was dropped (full queue, shutdown) and scheduled retries.
func (d *NotificationDispatcher) pickup() {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.JobTimeout)
	defer cancel()

	pending, err := d.store.ClaimPending(ctx, d.opts.PickupGrace, d.opts.PickupLease, d.opts.PickupBatch)
	if err != nil {
		d.log.Error("pending pickup failed", "error", err)
		return
	}

	queued := 0
	for _, n := range pending {
		// unqueued claims fall due again once their lease expires
		if !d.Enqueue(n) {
			break
		}
		queued++
	}
	if queued > 0 {
		d.log.Info("re-queued pending notifications", "count", queued, "claimed", len(pending))
	}
}

func (d *NotificationDispatcher) cleanupLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.opts.CleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.cleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := d.store.PurgeRead(ctx, d.opts.RetainRead)
	if err != nil {
		d.log.Error("notification cleanup failed", "error", err)
		return
	}
	if n > 0 {
		d.log.Info("cleaned up read notifications", "count", n)
	}
}

// Stop halts the workers. Queued notifications not yet delivered stay
// pending in the store and are picked up again after a restart.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.log.Info("stopping notification dispatcher")
		close(d.stopChan)
	})
	d.wg.Wait()
}
