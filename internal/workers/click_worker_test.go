package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortyhq/shorty/internal/models"
)

type recordingStore struct {
	mu     sync.Mutex
	clicks []models.Click
}

func (s *recordingStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	return nil, nil
}
func (s *recordingStore) Insert(ctx context.Context, link *models.Link) error    { return nil }
func (s *recordingStore) IncrementClicks(ctx context.Context, code string) error { return nil }
func (s *recordingStore) ListAll(ctx context.Context) ([]models.Link, error)     { return nil, nil }
func (s *recordingStore) Close() error                                           { return nil }

func (s *recordingStore) RecordClick(ctx context.Context, click *models.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, *click)
	return nil
}

func (s *recordingStore) recorded() []models.Click {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Click, len(s.clicks))
	copy(out, s.clicks)
	return out
}

const chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (Version/17.0 Mobile/15E148 Safari/604.1)"

func TestEventToClick_ClassifiesUserAgent(t *testing.T) {
	event := models.ClickEvent{
		Code:      "abc1234",
		Timestamp: time.Now(),
		Referrer:  "https://news.example/page",
		UserAgent: chromeDesktopUA,
	}

	click := EventToClick(event)
	assert.Equal(t, "abc1234", click.Code)
	assert.Equal(t, "https://news.example/page", click.Referrer)
	assert.Equal(t, DeviceDesktop, click.Device)
	assert.Equal(t, "Chrome", click.Browser)
	assert.Equal(t, chromeDesktopUA, click.UserAgent)
}

func TestEventToClick_MobileDevice(t *testing.T) {
	click := EventToClick(models.ClickEvent{Code: "m", UserAgent: iphoneUA})
	assert.Equal(t, DeviceMobile, click.Device)
}

func TestEventToClick_EmptyReferrerIsDirect(t *testing.T) {
	click := EventToClick(models.ClickEvent{Code: "abc1234"})
	assert.Equal(t, models.DirectReferrer, click.Referrer)
}

func TestClickWorkersDrainChannel(t *testing.T) {
	store := &recordingStore{}
	events := make(chan models.ClickEvent, 10)

	StartClickWorkers(3, events, store)

	for i := 0; i < 10; i++ {
		events <- models.ClickEvent{Code: "abc1234", Timestamp: time.Now(), UserAgent: chromeDesktopUA}
	}
	close(events)

	require.Eventually(t, func() bool {
		return len(store.recorded()) == 10
	}, 2*time.Second, 10*time.Millisecond)

	for _, click := range store.recorded() {
		assert.Equal(t, "abc1234", click.Code)
		assert.Equal(t, models.DirectReferrer, click.Referrer)
	}
}
