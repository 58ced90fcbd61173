// Package monitor periodically probes the destinations of every stored
// link and reports when one changes between accessible and inaccessible.
package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shortyhq/shorty/internal/storage"
)

// URLMonitor checks the reachability of long URLs on a fixed interval.
// It keeps the last observed state per code so only transitions get logged.
type URLMonitor struct {
	store       storage.Store
	interval    time.Duration
	knownStates map[string]bool
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewURLMonitor creates a monitor over the given store.
func NewURLMonitor(store storage.Store, interval time.Duration) *URLMonitor {
	return &URLMonitor{
		store:       store,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs the monitoring loop until the context is cancelled. An
// immediate check happens on startup before the first tick.
func (m *URLMonitor) Start(ctx context.Context) {
	log.Printf("[MONITOR] Starting URL monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkURLs(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[MONITOR] URL monitor stopped.")
			return
		case <-ticker.C:
			m.checkURLs(ctx)
		}
	}
}

func (m *URLMonitor) checkURLs(ctx context.Context) {
	links, err := m.store.ListAll(ctx)
	if err != nil {
		log.Printf("[MONITOR] Error retrieving links: %v", err)
		return
	}

	for _, link := range links {
		currentState := m.isURLAccessible(ctx, link.LongURL)

		m.mu.Lock()
		previousState, seen := m.knownStates[link.Code]
		m.knownStates[link.Code] = currentState
		m.mu.Unlock()

		if !seen {
			log.Printf("[MONITOR] Initial state for link %s (%s): %s",
				link.Code, link.LongURL, formatState(currentState))
			continue
		}
		if currentState != previousState {
			log.Printf("[NOTIFICATION] Link %s (%s) changed from %s to %s!",
				link.Code, link.LongURL, formatState(previousState), formatState(currentState))
		}
	}
}

// isURLAccessible sends a HEAD request; 2xx and 3xx count as accessible.
func (m *URLMonitor) isURLAccessible(ctx context.Context, url string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		log.Printf("[MONITOR] Error creating request for URL '%s': %v", url, err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func formatState(accessible bool) string {
	if accessible {
		return "ACCESSIBLE"
	}
	return "INACCESSIBLE"
}
