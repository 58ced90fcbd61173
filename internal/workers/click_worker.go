// Package workers drains the click event channel into the storage backend,
// so click analytics never sit on the redirect path.
package workers

import (
	"context"
	"log"

	"github.com/mileusna/useragent"

	"github.com/shortyhq/shorty/internal/models"
	"github.com/shortyhq/shorty/internal/storage"
)

// Device classes derived from the user-agent string.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// StartClickWorkers launches workerCount goroutines that consume click
// events and append them as access events. Workers exit when the channel is
// closed; recording failures are logged and never propagated anywhere.
func StartClickWorkers(workerCount int, clickEvents <-chan models.ClickEvent, store storage.Store) {
	log.Printf("Starting %d click worker(s)...", workerCount)
	for i := 0; i < workerCount; i++ {
		go clickWorker(clickEvents, store)
	}
}

func clickWorker(clickEvents <-chan models.ClickEvent, store storage.Store) {
	for event := range clickEvents {
		click := EventToClick(event)
		if err := store.RecordClick(context.Background(), click); err != nil {
			log.Printf("ERROR: failed to save click for code %s (UserAgent: %s): %v",
				event.Code, event.UserAgent, err)
		}
	}
}

// EventToClick expands a raw event into a full access event: the referrer
// defaults to "direct" and the user-agent string is classified into a
// device class and browser name.
func EventToClick(event models.ClickEvent) *models.Click {
	referrer := event.Referrer
	if referrer == "" {
		referrer = models.DirectReferrer
	}

	ua := useragent.Parse(event.UserAgent)
	return &models.Click{
		Code:      event.Code,
		Timestamp: event.Timestamp,
		Referrer:  referrer,
		Device:    deviceClass(ua),
		Browser:   ua.Name,
		UserAgent: event.UserAgent,
	}
}

func deviceClass(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return DeviceBot
	case ua.Mobile:
		return DeviceMobile
	case ua.Tablet:
		return DeviceTablet
	case ua.Desktop:
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}
