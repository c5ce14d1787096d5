package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bam_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BidsPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bam_bids_placed_total",
			Help: "Total bids accepted by the engine",
		},
	)

	BidRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bam_bid_rejections_total",
			Help: "Total bids rejected, by failed precondition",
		},
		[]string{"reason"},
	)

	AuctionsExtended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bam_auctions_extended_total",
			Help: "Total anti-snipe auction extensions",
		},
	)

	BoothsSold = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bam_booths_sold_total",
			Help: "Total booth sales, by resolution path",
		},
		[]string{"path"},
	)

	NotificationsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bam_notifications_total",
			Help: "Total notifications derived from mutations",
		},
	)

	RateLimitExceeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bam_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(RequestsTotal, BidsPlaced, BidRejections, AuctionsExtended, BoothsSold, NotificationsEmitted, RateLimitExceeded)
}
