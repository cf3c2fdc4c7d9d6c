package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveriesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rockblock_deliveries_received_total",
		Help: "Total inbound webhook deliveries received",
	})
	DeliveriesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rockblock_deliveries_rejected_total",
		Help: "Total deliveries rejected for missing or malformed fields",
	})
	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rockblock_messages_stored_total",
		Help: "Total messages written to object storage",
	})
	StorageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rockblock_storage_errors_total",
		Help: "Total failed object storage writes",
	})
	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rockblock_cache_errors_total",
		Help: "Total failed latest-position cache writes",
	})
)
