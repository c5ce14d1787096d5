package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
	"github.com/robertarktes/booth-auction-manager/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RateLimitMiddleware(rl))
	r.Use(IdempotencyKeyMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", h.Snapshot)
		r.Get("/booths", h.ListBooths)
		r.Get("/booths/{id}", h.GetBooth)
		r.Get("/booths/{id}/bids", h.BoothBids)
		r.Post("/booths/{id}/bids", h.PlaceBid)
		r.Post("/booths/{id}/bids/remove", h.RemoveBid)
		r.Post("/booths/{id}/buyout-requests", h.RequestBuyOut)
		r.Post("/booths/{id}/buyout", h.DirectBuyOut)
		r.Post("/booths/{id}/payment", h.SubmitPayment)
		r.Post("/booths/{id}/watchlist", h.ToggleWatchlist)
		r.Get("/vendors/{vendor}/notifications", h.VendorNotifications)
		r.Get("/vendors/{vendor}/watchlist", h.VendorWatchlist)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/booths", h.AddBooth)
			r.Put("/booths/{id}", h.UpdateBooth)
			r.Post("/booths/bulk", h.BulkUpdateBooths)
			r.Get("/booths/{id}/buyout-requests", h.BoothBuyoutRequests)
			r.Post("/booths/{id}/approve-buyout", h.ApproveBuyOut)
			r.Post("/booths/{id}/confirm-bid", h.ConfirmBid)
			r.Post("/booths/{id}/confirm-payment", h.ConfirmPayment)
			r.Post("/booths/{id}/revoke", h.RevokeBid)
			r.Post("/booths/{id}/assign", h.AssignBooth)
			r.Post("/booths/{id}/unassign", h.UnassignBooth)
			r.Post("/locations", h.AddLocation)
			r.Delete("/locations/{name}", h.DeleteLocation)
			r.Post("/broadcast", h.Broadcast)
			r.Get("/broadcasts", h.BroadcastHistory)
			r.Put("/event-status", h.SetEventStatus)
			r.Get("/audit-log", h.AuditLog)
		})

		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
