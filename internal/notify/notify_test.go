package notify_test

import (
	"testing"

	"scanlane/internal/notify"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := notify.NewBroker()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(notify.Update{UserID: "lane-1"})

	u := <-sub.C()
	if u.UserID != "lane-1" {
		t.Fatalf("want lane-1, got %q", u.UserID)
	}
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	b := notify.NewBroker()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Nobody is reading; only the newest snapshot should survive.
	b.Publish(notify.Update{UserID: "v1"})
	b.Publish(notify.Update{UserID: "v2"})
	b.Publish(notify.Update{UserID: "v3"})

	u := <-sub.C()
	if u.UserID != "v3" {
		t.Fatalf("want latest snapshot v3, got %q", u.UserID)
	}
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra snapshot %q", extra.UserID)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := notify.NewBroker()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	b.Unsubscribe(sub) // second call is a no-op

	if _, ok := <-sub.C(); ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	b.Publish(notify.Update{UserID: "late"})
}
