package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vchat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vchat_messages_total",
		Help: "Total messages processed by type",
	}, []string{"type"})

	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vchat_delivery_failures_total",
		Help: "Recipients dropped because an outbound send failed or timed out",
	})

	MessageProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vchat_message_processing_seconds",
		Help:    "Time to fan out each message type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(DeliveryFailures)
	prometheus.MustRegister(MessageProcessingDuration)
}
