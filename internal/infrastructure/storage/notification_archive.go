package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

const defaultArchiveTimeout = 5 * time.Second

// NotificationArchive writes each raw provider notification to object
// storage, one object per delivery, so disputes can be replayed against
// exactly what Midtrans sent.
//
// Keys look like {prefix}/2026/10/18/{order_id}/{unix_nanos}.json
type NotificationArchive struct {
	storage ObjectStorage
	prefix  string
	timeout time.Duration
}

// NewNotificationArchive creates an archive over storage. A zero timeout uses 5s.
func NewNotificationArchive(storage ObjectStorage, prefix string, timeout time.Duration) *NotificationArchive {
	if timeout <= 0 {
		timeout = defaultArchiveTimeout
	}
	return &NotificationArchive{
		storage: storage,
		prefix:  strings.Trim(prefix, "/"),
		timeout: timeout,
	}
}

// Archive stores body for orderID. The upload is bounded by the archive
// timeout even if ctx has none.
func (a *NotificationArchive) Archive(ctx context.Context, orderID string, body []byte, receivedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key := a.Key(orderID, receivedAt)
	if err := a.storage.Upload(ctx, key, body, "application/json"); err != nil {
		return fmt.Errorf("archive notification for %s: %w", orderID, err)
	}
	return nil
}

// Key returns the object key used for a notification received at t
func (a *NotificationArchive) Key(orderID string, t time.Time) string {
	t = t.UTC()
	return path.Join(
		a.prefix,
		t.Format("2006/01/02"),
		url.PathEscape(orderID),
		fmt.Sprintf("%d.json", t.UnixNano()),
	)
}
