package relay_test

import (
	"marketplace/config"
	"marketplace/internal/relay"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Match(t *testing.T) {
	event := relay.ChangeEvent{Table: "bookings", ID: "b-1"}

	tests := []struct {
		name   string
		filter relay.Filter
		want   bool
	}{
		{name: "everything", filter: relay.Filter{}, want: true},
		{name: "same table", filter: relay.Filter{Table: "bookings"}, want: true},
		{name: "other table", filter: relay.Filter{Table: "auctions"}},
		{name: "same row", filter: relay.Filter{Table: "bookings", ID: "b-1"}, want: true},
		{name: "other row", filter: relay.Filter{Table: "bookings", ID: "b-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(event))
		})
	}
}

func TestHub_BroadcastToMatchingSubscribers(t *testing.T) {
	hub := relay.NewHub(&config.Config{})

	bookings, cancelBookings := hub.Subscribe(relay.Filter{Table: "bookings"})
	defer cancelBookings()

	auctions, cancelAuctions := hub.Subscribe(relay.Filter{Table: "auctions"})
	defer cancelAuctions()

	delivered := hub.Broadcast(relay.ChangeEvent{Table: "bookings", ID: "b-1", Op: relay.OpUpdate})

	assert.Equal(t, 1, delivered)

	event := <-bookings
	assert.Equal(t, "b-1", event.ID)
	assert.Empty(t, auctions)
}

func TestHub_SlowSubscriberDropsHints(t *testing.T) {
	cfg := &config.Config{}
	cfg.Relay.SubscriberBuffer = 1

	hub := relay.NewHub(cfg)

	ch, cancel := hub.Subscribe(relay.Filter{})
	defer cancel()

	assert.Equal(t, 1, hub.Broadcast(relay.ChangeEvent{ID: "1"}))
	assert.Equal(t, 0, hub.Broadcast(relay.ChangeEvent{ID: "2"}))

	assert.Equal(t, "1", (<-ch).ID)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := relay.NewHub(&config.Config{})

	ch, cancel := hub.Subscribe(relay.Filter{})
	require.Equal(t, 1, hub.Len())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.Len())
}

func TestHub_Close(t *testing.T) {
	hub := relay.NewHub(&config.Config{})

	first, _ := hub.Subscribe(relay.Filter{})

	hub.Close()

	_, open := <-first
	assert.False(t, open)

	late, cancel := hub.Subscribe(relay.Filter{})
	cancel()

	_, open = <-late
	assert.False(t, open)
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	hub := relay.NewHub(&config.Config{})

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, cancel := hub.Subscribe(relay.Filter{Table: "auctions"})
			cancel()
		}()

		go func() {
			defer wg.Done()

			hub.Broadcast(relay.ChangeEvent{Table: "auctions", ID: "a-1"})
		}()
	}

	wg.Wait()

	assert.Zero(t, hub.Len())
}
