package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
)

func event(campaign string, done int) models.ProgressEvent {
	return models.ProgressEvent{
		CampaignID: campaign,
		Stage:      models.StageFitting,
		Done:       done,
		At:         time.Now(),
	}
}

func TestHubRoutesByCampaign(t *testing.T) {
	h := NewProgressHub()
	defer h.Close()

	a, cancelA := h.Subscribe("camp-a")
	defer cancelA()
	all, cancelAll := h.Subscribe("")
	defer cancelAll()

	h.Notify(event("camp-a", 1))
	h.Notify(event("camp-b", 2))

	require.Equal(t, 1, (<-a).Done)
	select {
	case ev := <-a:
		t.Fatalf("subscriber for camp-a got foreign event %+v", ev)
	default:
	}

	require.Equal(t, 1, (<-all).Done)
	require.Equal(t, 2, (<-all).Done)
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := NewProgressHub(WithSubscriberBuffer(1))
	defer h.Close()

	ch, cancel := h.Subscribe("camp-a")
	defer cancel()

	h.Notify(event("camp-a", 1))
	h.Notify(event("camp-a", 2)) // buffer full, dropped

	require.Equal(t, 1, (<-ch).Done)
	select {
	case ev := <-ch:
		t.Fatalf("expected second event dropped, got %+v", ev)
	default:
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewProgressHub()
	defer h.Close()

	ch, cancel := h.Subscribe("camp-a")
	cancel()
	_, open := <-ch
	require.False(t, open)

	// notifying after cancel must not panic
	h.Notify(event("camp-a", 1))
}

func TestHubCloseClosesAll(t *testing.T) {
	h := NewProgressHub()
	ch, _ := h.Subscribe("")
	h.Close()
	_, open := <-ch
	require.False(t, open)

	h.Notify(event("camp-a", 1)) // no-op after close
}
