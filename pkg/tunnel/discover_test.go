package tunnel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingWithMatch = `{"tunnels":[
 {"name":"other","public_url":"https://other.ngrok.app","proto":"https","config":{"addr":"http://localhost:3000"}},
 {"name":"command_line","public_url":"  https://abc123.ngrok-free.app  ","proto":"https","config":{"addr":"http://localhost:7681"}}
]}`

func newFakeAgent(t *testing.T, misses int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tunnels", r.URL.Path)
		n := int(calls.Add(1))
		w.Header().Set("Content-Type", "application/json")
		if n <= misses {
			fmt.Fprint(w, `{"tunnels":[]}`)
			return
		}
		fmt.Fprint(w, listingWithMatch)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestPoller(apiURL string, clock retry.Clock) *Poller {
	p := NewPoller(apiURL, nil)
	p.Interval = 500 * time.Millisecond
	p.Clock = clock
	return p
}

func TestDiscoverAfterMisses(t *testing.T) {
	for _, misses := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d misses", misses), func(t *testing.T) {
			srv, calls := newFakeAgent(t, misses)
			clock := retry.NewFakeClock(time.Unix(0, 0))

			url, err := newTestPoller(srv.URL, clock).Discover(context.Background(), 7681, 30*time.Second)
			require.NoError(t, err)
			assert.Equal(t, "https://abc123.ngrok-free.app", url)
			assert.Equal(t, int32(misses+1), calls.Load())
			assert.Len(t, clock.Sleeps(), misses)
		})
	}
}

func TestDiscoverTimesOutWhenNoMatch(t *testing.T) {
	srv, _ := newFakeAgent(t, 1<<30)
	start := time.Unix(0, 0)
	clock := retry.NewFakeClock(start)

	_, err := newTestPoller(srv.URL, clock).Discover(context.Background(), 7681, 3*time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDiscoveryTimeout))
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 3*time.Second)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestDiscoverTimeoutIsNotEarlyWithRealClock(t *testing.T) {
	srv, _ := newFakeAgent(t, 1<<30)
	p := NewPoller(srv.URL, nil)
	p.Interval = 20 * time.Millisecond

	start := time.Now()
	_, err := p.Discover(context.Background(), 7681, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDiscoveryTimeout))
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestDiscoverRetriesWhileUnreachable(t *testing.T) {
	// Nothing listens on a closed server's address.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	clock := retry.NewFakeClock(time.Unix(0, 0))
	_, err := newTestPoller(addr, clock).Discover(context.Background(), 7681, 2*time.Second)
	require.Error(t, err)

	remuxErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDiscoveryTimeout, remuxErr.Code)
	assert.Contains(t, err.Error(), "unreachable")
	assert.Len(t, clock.Sleeps(), 4)
}

func TestDiscoverTreatsServerErrorsAsTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "starting", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, listingWithMatch)
	}))
	defer srv.Close()

	url, err := newTestPoller(srv.URL, retry.NewFakeClock(time.Unix(0, 0))).Discover(context.Background(), 7681, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://abc123.ngrok-free.app", url)
}

func TestDiscoverRejectsInvalidPort(t *testing.T) {
	_, err := NewPoller("", nil).Discover(context.Background(), 0, time.Second)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestMatch(t *testing.T) {
	tunnel := func(addr, url string) Tunnel {
		var tn Tunnel
		tn.Config.Addr = addr
		tn.PublicURL = url
		return tn
	}

	tests := []struct {
		name    string
		tunnels []Tunnel
		want    string
		found   bool
	}{
		{"url addr", []Tunnel{tunnel("http://localhost:7681", "https://a.ngrok.app")}, "https://a.ngrok.app", true},
		{"host port addr", []Tunnel{tunnel("localhost:7681", "https://b.ngrok.app")}, "https://b.ngrok.app", true},
		{"bare port addr", []Tunnel{tunnel("7681", "https://c.ngrok.app")}, "https://c.ngrok.app", true},
		{"wrong port", []Tunnel{tunnel("http://localhost:8080", "https://d.ngrok.app")}, "", false},
		{"http only", []Tunnel{tunnel("http://localhost:7681", "http://e.ngrok.app")}, "", false},
		{"http then https", []Tunnel{
			tunnel("http://localhost:7681", "http://f.ngrok.app"),
			tunnel("http://localhost:7681", "https://f.ngrok.app"),
		}, "https://f.ngrok.app", true},
		{"url kept verbatim", []Tunnel{tunnel("7681", "https://G.ngrok.app/Path?q=1")}, "https://G.ngrok.app/Path?q=1", true},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.tunnels, 7681)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
