package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hab-telemetry/rockblock-receiver/internal/cache"
	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
	"github.com/hab-telemetry/rockblock-receiver/internal/observability"
	"github.com/hab-telemetry/rockblock-receiver/internal/storage"
)

// MessageService persists inbound satellite messages as write-once JSON
// objects and reads them back for reporting.
type MessageService struct {
	store  storage.ObjectStorage
	latest *cache.LatestCache
	now    func() time.Time
}

// NewMessageService builds a MessageService. latest may be nil, in which
// case latest-position lookups fall back to a bucket scan.
func NewMessageService(store storage.ObjectStorage, latest *cache.LatestCache) *MessageService {
	return &MessageService{
		store:  store,
		latest: latest,
		now:    time.Now,
	}
}

// Ingest stamps a receipt time on the delivery and writes it to the
// bucket as {imei}_{timestamp}.json. Nanosecond timestamp precision keeps
// object names unique across back-to-back deliveries from one device.
func (s *MessageService) Ingest(ctx context.Context, d *domain.InboundDelivery) (*domain.Message, error) {
	ts := s.now().UTC().Format(time.RFC3339Nano)

	msg := &domain.Message{
		IMEI:             d.IMEI,
		Timestamp:        ts,
		Data:             d.Data,
		MOMSN:            d.MOMSN,
		TransmitTime:     d.TransmitTime,
		IridiumLatitude:  d.IridiumLatitude,
		IridiumLongitude: d.IridiumLongitude,
		IridiumCEP:       d.IridiumCEP,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}

	key := fmt.Sprintf("%s_%s.json", d.IMEI, ts)
	if err := s.store.PutObject(ctx, key, payload, "application/json"); err != nil {
		observability.StorageErrors.Inc()
		return nil, fmt.Errorf("storing message %s: %w", key, err)
	}
	msg.ObjectKey = key
	observability.MessagesStored.Inc()

	// Best effort: the bucket write already succeeded, so a cache
	// failure must not fail the delivery.
	if s.latest != nil {
		if err := s.latest.Set(ctx, msg); err != nil {
			observability.CacheErrors.Inc()
			log.Warn().Err(err).Str("imei", msg.IMEI).Msg("failed to update latest-position cache")
		}
	}

	return msg, nil
}

// ListOptions narrows a bucket scan. IMEI filters by device (object keys
// start with the IMEI), Since drops messages received before the cutoff,
// Limit keeps only the N newest. Zero values disable each filter.
type ListOptions struct {
	IMEI  string
	Since time.Time
	Limit int
}

// List fetches stored messages matching opts, newest first. A record
// that cannot be fetched or decoded is logged and skipped; it never
// aborts the scan.
func (s *MessageService) List(ctx context.Context, opts ListOptions) ([]*domain.Message, error) {
	objects, err := s.store.ListObjects(ctx, opts.IMEI)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	messages := make([]*domain.Message, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}

		body, err := s.store.GetObject(ctx, obj.Key)
		if err != nil {
			log.Warn().Err(err).Str("object", obj.Key).Msg("skipping unreadable object")
			continue
		}

		var msg domain.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Warn().Err(err).Str("object", obj.Key).Msg("skipping undecodable object")
			continue
		}
		msg.ObjectKey = obj.Key

		if !opts.Since.IsZero() {
			received, err := time.Parse(time.RFC3339Nano, msg.Timestamp)
			if err != nil || received.Before(opts.Since) {
				continue
			}
		}

		messages = append(messages, &msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		return receiptTime(messages[i]).After(receiptTime(messages[j]))
	})

	if opts.Limit > 0 && len(messages) > opts.Limit {
		messages = messages[:opts.Limit]
	}

	return messages, nil
}

// Latest returns the most recent message for a device, preferring the
// cache and falling back to a bucket scan. Returns nil when the device
// has no stored messages.
func (s *MessageService) Latest(ctx context.Context, imei string) (*domain.Message, error) {
	if s.latest != nil {
		msg, err := s.latest.Get(ctx, imei)
		if err != nil {
			log.Warn().Err(err).Str("imei", imei).Msg("latest-position cache read failed, falling back to bucket")
		} else if msg != nil {
			return msg, nil
		}
	}

	messages, err := s.List(ctx, ListOptions{IMEI: imei, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

func receiptTime(msg *domain.Message) time.Time {
	t, err := time.Parse(time.RFC3339Nano, msg.Timestamp)
	if err != nil {
		// Unparseable timestamps sort to the end.
		return time.Time{}
	}
	return t
}
