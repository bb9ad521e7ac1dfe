package change_test

import (
	"bufio"
	"context"
	"encoding/json"
	"marketplace/config"
	otelMocks "marketplace/infras/otel/mocks"
	"marketplace/internal/handlers/change"
	"marketplace/internal/relay"
	"marketplace/shared/constant"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *relay.Hub, role string) *httptest.Server {
	t.Helper()

	handler := change.New(hub, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), constant.ContextKeyUserRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	handler.Router(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func waitForSubscriber(t *testing.T, hub *relay.Hub) {
	t.Helper()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func readEvent(t *testing.T, reader *bufio.Reader) relay.ChangeEvent {
	t.Helper()

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)

		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var event relay.ChangeEvent
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(data)), &event))

			return event
		}
	}
}

func TestStreamChanges(t *testing.T) {
	hub := relay.NewHub(&config.Config{})
	server := newServer(t, hub, "client")

	resp, err := http.Get(server.URL + "/changes?table=bookings&id=b-1")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, constant.ContentTypeEventStream, resp.Header.Get(constant.RequestHeaderContentType))

	waitForSubscriber(t, hub)

	hub.Broadcast(relay.ChangeEvent{Table: "bookings", ID: "b-2", Op: relay.OpUpdate})
	hub.Broadcast(relay.ChangeEvent{Table: "bookings", ID: "b-1", Op: relay.OpUpdate, Row: json.RawMessage(`{"status":"completed"}`)})

	event := readEvent(t, bufio.NewReader(resp.Body))

	assert.Equal(t, "b-1", event.ID)
	assert.Empty(t, event.Row, "rows are for admins only")
}

func TestStreamChanges_AdminSeesRows(t *testing.T) {
	hub := relay.NewHub(&config.Config{})
	server := newServer(t, hub, "admin")

	resp, err := http.Get(server.URL + "/changes")
	require.NoError(t, err)

	defer resp.Body.Close()

	waitForSubscriber(t, hub)

	hub.Broadcast(relay.ChangeEvent{Table: "auctions", ID: "a-1", Op: relay.OpUpdate, Row: json.RawMessage(`{"status":"completed"}`)})

	event := readEvent(t, bufio.NewReader(resp.Body))

	assert.JSONEq(t, `{"status":"completed"}`, string(event.Row))
}

func TestStreamChanges_UnknownTable(t *testing.T) {
	server := newServer(t, relay.NewHub(&config.Config{}), "client")

	resp, err := http.Get(server.URL + "/changes?table=payments")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamChanges_HubClosedEndsStream(t *testing.T) {
	hub := relay.NewHub(&config.Config{})
	server := newServer(t, hub, "client")

	resp, err := http.Get(server.URL + "/changes")
	require.NoError(t, err)

	defer resp.Body.Close()

	waitForSubscriber(t, hub)
	hub.Close()

	_, err = bufio.NewReader(resp.Body).ReadString('\n')
	assert.Error(t, err)
}
