package engine

import (
	"context"
	"fmt"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
)

// RequestBuyOut queues a buyout offer for admin review. The booth status is
// untouched; the mere presence of a pending request pauses ordinary bidding
// and bid removal on AdminApprove booths. A vendor's repeat requests stack
// and are all cleared together on approval.
func (e *Engine) RequestBuyOut(ctx context.Context, vendor, boothID string, circuits int) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}
	if b.Status != domain.BoothOpen {
		e.mu.Unlock()
		return domain.Fail("This booth is no longer open.")
	}
	if !b.AllowBuyout {
		e.mu.Unlock()
		return domain.Fail("Buyout is not available for this booth.")
	}

	e.buyouts[boothID] = append(e.buyouts[boothID], domain.BuyoutRequest{
		Vendor:      vendor,
		Circuits:    circuits,
		RequestedAt: e.now(),
	})
	e.registerVendor(vendor)
	e.notify(domain.AdminRecipient, "Buyout requested",
		fmt.Sprintf("%s requested a buyout of %s for %.2f.", vendor, b.Title, b.BuyOutPrice),
		domain.NotificationSystem)

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.buyout.requested", map[string]interface{}{
		"booth_id": boothID,
		"vendor":   vendor,
	})

	return domain.OK("Your buyout request for %s has been sent for review.", title)
}

// DirectBuyOut sells a DirectPay booth immediately. Payment is simulated as
// already complete, so both payment flags are set at sale time. This is the
// only path that does so.
func (e *Engine) DirectBuyOut(ctx context.Context, vendor, boothID string, circuits int) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}
	if !b.AllowBuyout || b.BuyoutMethod != domain.BuyoutDirectPay {
		e.mu.Unlock()
		return domain.Fail("Direct buyout is not available for this booth.")
	}
	if b.Status != domain.BoothOpen {
		e.mu.Unlock()
		return domain.Fail("This booth is no longer open.")
	}

	price := b.BuyOutPrice
	b.Status = domain.BoothSold
	b.Winner = vendor
	b.CurrentBid = &price
	b.WinningCircuits = circuits
	b.PaymentSubmitted = true
	b.PaymentConfirmed = true
	e.registerVendor(vendor)

	total := e.totalPayable(price, circuits)
	e.notify(vendor, "Booth purchased",
		fmt.Sprintf("You bought out %s for %.2f (total paid %.2f).", b.Title, price, total),
		domain.NotificationSystem)
	e.notify(domain.AdminRecipient, "Booth sold",
		fmt.Sprintf("%s bought out %s for %.2f.", vendor, b.Title, price),
		domain.NotificationSystem)
	e.auditAppend(ctx, "direct_buyout", fmt.Sprintf("booth %s sold to %s for %.2f", boothID, vendor, price))
	observability.BoothsSold.WithLabelValues("direct_buyout").Inc()

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.sold", map[string]interface{}{
		"booth_id": boothID,
		"winner":   vendor,
		"path":     "direct_buyout",
	})

	return domain.OK("You bought out %s for %.2f.", title, price)
}

// ApproveBuyOut accepts one vendor's pending request and implicitly rejects
// every other request on the booth. Payment remains owed afterwards, unlike
// a direct buyout.
func (e *Engine) ApproveBuyOut(ctx context.Context, boothID, winner string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}

	var approved *domain.BuyoutRequest
	for i := range e.buyouts[boothID] {
		if e.buyouts[boothID][i].Vendor == winner {
			approved = &e.buyouts[boothID][i]
			break
		}
	}
	if approved == nil {
		e.mu.Unlock()
		return domain.Fail("No pending buyout request from %s.", winner)
	}

	price := b.BuyOutPrice
	circuits := approved.Circuits
	b.Status = domain.BoothSold
	b.Winner = winner
	b.CurrentBid = &price
	b.WinningCircuits = circuits
	b.PaymentSubmitted = false
	b.PaymentConfirmed = false

	losers := make(map[string]bool)
	for _, req := range e.buyouts[boothID] {
		if req.Vendor != winner {
			losers[req.Vendor] = true
		}
	}
	delete(e.buyouts, boothID)

	total := e.totalPayable(price, circuits)
	e.notify(winner, "Buyout approved",
		fmt.Sprintf("Your buyout of %s was approved. Total payable: %.2f.", b.Title, total),
		domain.NotificationSystem)
	for vendor := range losers {
		e.notify(vendor, "Booth sold",
			fmt.Sprintf("%s has been sold to another vendor.", b.Title),
			domain.NotificationSystem)
	}
	e.auditAppend(ctx, "approve_buyout", fmt.Sprintf("booth %s sold to %s for %.2f", boothID, winner, price))
	observability.BoothsSold.WithLabelValues("approve_buyout").Inc()

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.sold", map[string]interface{}{
		"booth_id": boothID,
		"winner":   winner,
		"path":     "approve_buyout",
	})

	return domain.OK("Buyout of %s approved for %s.", title, winner)
}
