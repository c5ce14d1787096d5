package engine

import (
	"context"
	"time"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
)

// Seed loads the bootstrap inventory. State is process-memory only, so this
// runs exactly once at startup; there is nothing to reconcile against.
func (e *Engine) Seed(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.locations = append(e.locations, "Main Hall", "North Wing", "Food Court", "Entrance Plaza")

	booths := []domain.Booth{
		{
			ID: "B-101", Title: "Food Court Corner A", Type: domain.BoothFood, Size: "3x3",
			Status: domain.BoothOpen, Location: "Food Court",
			BasePrice: 500, Increment: 50, BuyOutPrice: 1500,
			BidEndDate: now.Add(48 * time.Hour), IsBiddingEnabled: true,
			AllowBuyout: true, BuyoutMethod: domain.BuyoutDirectPay,
			BiddingPaymentMethod: "bank_transfer", CircuitLimit: 4,
		},
		{
			ID: "B-102", Title: "Food Court Corner B", Type: domain.BoothFood, Size: "3x3",
			Status: domain.BoothOpen, Location: "Food Court",
			BasePrice: 500, Increment: 50, BuyOutPrice: 1500,
			BidEndDate: now.Add(48 * time.Hour), IsBiddingEnabled: true,
			AllowBuyout: true, BuyoutMethod: domain.BuyoutAdminApprove,
			BiddingPaymentMethod: "bank_transfer", CircuitLimit: 4,
		},
		{
			ID: "B-201", Title: "Main Hall Exhibitor 1", Type: domain.BoothExhibitor, Size: "4x4",
			Status: domain.BoothOpen, Location: "Main Hall",
			BasePrice: 800, Increment: 100, BuyOutPrice: 2500,
			BidEndDate: now.Add(72 * time.Hour), IsBiddingEnabled: true,
			AllowBuyout: true, BuyoutMethod: domain.BuyoutAdminApprove,
			BiddingPaymentMethod: "card", CircuitLimit: 6,
		},
		{
			ID: "B-202", Title: "Main Hall Exhibitor 2", Type: domain.BoothExhibitor, Size: "4x4",
			Status: domain.BoothOpen, Location: "Main Hall",
			BasePrice: 800, Increment: 100, BuyOutPrice: 2500,
			BidEndDate: now.Add(72 * time.Hour), IsBiddingEnabled: true,
			AllowBuyout: false, BuyoutMethod: domain.BuyoutDirectPay,
			BiddingPaymentMethod: "card", CircuitLimit: 6,
		},
		{
			ID: "B-301", Title: "Entrance Sponsor Stage", Type: domain.BoothSponsors, Size: "6x6",
			Status: domain.BoothOpen, Location: "Entrance Plaza",
			BasePrice: 2000, Increment: 250, BuyOutPrice: 6000,
			BidEndDate: now.Add(96 * time.Hour), IsBiddingEnabled: true,
			AllowBuyout: true, BuyoutMethod: domain.BuyoutDirectPay,
			BiddingPaymentMethod: "bank_transfer", CircuitLimit: 10,
			HideIncrementValue: true,
		},
		{
			ID: "B-302", Title: "North Wing Sponsor Wall", Type: domain.BoothSponsors, Size: "6x2",
			Status: domain.BoothClosed, Location: "North Wing",
			BasePrice: 1200, Increment: 150, BuyOutPrice: 3500,
			IsBiddingEnabled: false, AllowBuyout: false,
			BuyoutMethod: domain.BuyoutAdminApprove, BiddingPaymentMethod: "card",
			CircuitLimit: 4, AllowDirectAssignment: true,
		},
	}
	for _, b := range booths {
		booth := b
		e.booths[booth.ID] = &booth
		e.boothOrder = append(e.boothOrder, booth.ID)
	}

	for _, vendor := range []string{"Harbor Coffee Co", "Lumen Crafts", "Peak Outfitters"} {
		e.registerVendor(vendor)
	}

	e.log.WithField("booths", len(booths)).Info("seeded bootstrap inventory")
}
