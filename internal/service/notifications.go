package service

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/kv"
)

// Notifications serves per-user inboxes.
type Notifications struct {
	deps
}

// List returns the inbox newest first.
func (n *Notifications) List(ctx context.Context, userID string) ([]catalog.Notification, error) {
	key, err := userKey(catalog.Notifications, userID)
	if err != nil {
		return nil, err
	}
	items, err := kv.Load[catalog.Notification](ctx, n.store, key)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b catalog.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

func (n *Notifications) UnreadCount(ctx context.Context, userID string) (int, error) {
	items, err := n.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, it := range items {
		if !it.Read {
			unread++
		}
	}
	return unread, nil
}

// Add validates and stores a new unread notification.
func (n *Notifications) Add(ctx context.Context, userID string, note catalog.Notification) (catalog.Notification, error) {
	key, err := userKey(catalog.Notifications, userID)
	if err != nil {
		return catalog.Notification{}, err
	}
	if err := catalog.Validate(note); err != nil {
		return catalog.Notification{}, err
	}
	note.ID = uuid.New().String()
	note.Read = false
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now()
	}

	_, err = kv.Update(ctx, n.store, key, func(items []catalog.Notification) ([]catalog.Notification, error) {
		return append(items, note), nil
	})
	if err != nil {
		return catalog.Notification{}, err
	}
	return note, nil
}

// MarkRead flags notification id as read. Unknown ids and already read notifications are
// left alone.
func (n *Notifications) MarkRead(ctx context.Context, userID, id string) error {
	return n.markRead(ctx, userID, func(it *catalog.Notification) bool { return it.ID == id })
}

func (n *Notifications) MarkAllRead(ctx context.Context, userID string) error {
	return n.markRead(ctx, userID, func(*catalog.Notification) bool { return true })
}

func (n *Notifications) markRead(ctx context.Context, userID string, match func(*catalog.Notification) bool) error {
	key, err := userKey(catalog.Notifications, userID)
	if err != nil {
		return err
	}
	_, err = kv.Update(ctx, n.store, key, func(items []catalog.Notification) ([]catalog.Notification, error) {
		for i := range items {
			if match(&items[i]) {
				items[i].Read = true
			}
		}
		return items, nil
	})
	return err
}

// Remove deletes notification id. Removing an absent notification is a no-op.
func (n *Notifications) Remove(ctx context.Context, userID, id string) error {
	key, err := userKey(catalog.Notifications, userID)
	if err != nil {
		return err
	}
	_, err = kv.Update(ctx, n.store, key, func(items []catalog.Notification) ([]catalog.Notification, error) {
		return slices.DeleteFunc(items, func(it catalog.Notification) bool { return it.ID == id }), nil
	})
	return err
}

func (n *Notifications) Clear(ctx context.Context, userID string) error {
	key, err := userKey(catalog.Notifications, userID)
	if err != nil {
		return err
	}
	return n.store.Clear(ctx, key)
}
