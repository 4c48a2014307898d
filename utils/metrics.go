package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BidsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_bids_accepted_total",
		Help: "Total number of accepted bids",
	})

	BidsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_rejected_total",
		Help: "Total number of rejected bids",
	}, []string{"reason"})

	BidCASConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_bid_cas_conflicts_total",
		Help: "Total number of price compare-and-swap conflicts during bid placement",
	})

	AuctionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_created_total",
		Help: "Total number of auctions created",
	})

	AuctionsEndedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_ended_total",
		Help: "Total number of auctions transitioned to ended",
	})

	AuctionsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_cancelled_total",
		Help: "Total number of auctions cancelled",
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_events_published_total",
		Help: "Total number of auction events published to subscribers",
	}, []string{"kind"})

	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_events_dropped_total",
		Help: "Total number of events dropped for slow subscribers",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
