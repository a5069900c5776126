package server

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// ---------- Event Stream Tests ----------

// sseClient connects to an event-stream URL and forwards the name of
// every received event on the returned channel. The connection closes
// when the returned close function is called.
func sseClient(t *testing.T, url string) (events <-chan string, closeConn func()) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("connecting to event stream: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected Content-Type text/event-stream, got %q", ct)
	}

	ch := make(chan string, 16)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				ch <- name
			}
		}
	}()

	return ch, func() { resp.Body.Close() }
}

// waitForSubscribers polls the hub until it holds want subscribers.
func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, got %d", want, hub.SubscriberCount())
}

func newEventsTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(Options{
		Address:   "127.0.0.1:0",
		Root:      t.TempDir(),
		EventPath: "events",
		Debounce:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(http.HandlerFunc(srv.handleEvents))
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHandleEvents_DeliversFilesChanged(t *testing.T) {
	srv, ts := newEventsTestServer(t)

	events, closeConn := sseClient(t, ts.URL)
	defer closeConn()

	waitForSubscribers(t, srv.Hub(), 1)
	srv.Hub().Broadcast()

	select {
	case name := <-events:
		if name != "files-changed" {
			t.Errorf("expected event name 'files-changed', got %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected a files-changed event")
	}
}

func TestHandleEvents_SubscriberOnlySeesFutureEvents(t *testing.T) {
	srv, ts := newEventsTestServer(t)

	// Broadcast before anyone is connected: the event is dropped.
	srv.Hub().Broadcast()

	events, closeConn := sseClient(t, ts.URL)
	defer closeConn()
	waitForSubscribers(t, srv.Hub(), 1)

	select {
	case <-events:
		t.Error("subscriber should not receive events broadcast before it connected")
	case <-time.After(300 * time.Millisecond):
		// Quiet, as expected.
	}

	// A new broadcast does arrive.
	srv.Hub().Broadcast()
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Error("expected the post-connect broadcast to arrive")
	}
}

func TestHandleEvents_DisconnectCleansUp(t *testing.T) {
	srv, ts := newEventsTestServer(t)

	_, closeConn := sseClient(t, ts.URL)
	waitForSubscribers(t, srv.Hub(), 1)

	closeConn()
	waitForSubscribers(t, srv.Hub(), 0)
}

func TestHandleEvents_RepeatedConnectDisconnectCycles(t *testing.T) {
	srv, ts := newEventsTestServer(t)

	for i := 0; i < 10; i++ {
		_, closeConn := sseClient(t, ts.URL)
		waitForSubscribers(t, srv.Hub(), 1)
		closeConn()
		waitForSubscribers(t, srv.Hub(), 0)
	}
}

func TestHandleEvents_SecondSubscriberSurvivesFirstDisconnect(t *testing.T) {
	srv, ts := newEventsTestServer(t)

	_, closeFirst := sseClient(t, ts.URL)
	waitForSubscribers(t, srv.Hub(), 1)

	events2, closeSecond := sseClient(t, ts.URL)
	defer closeSecond()
	waitForSubscribers(t, srv.Hub(), 2)

	closeFirst()
	waitForSubscribers(t, srv.Hub(), 1)

	srv.Hub().Broadcast()

	select {
	case name := <-events2:
		if name != "files-changed" {
			t.Errorf("expected 'files-changed', got %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected surviving subscriber to receive the event")
	}
}
