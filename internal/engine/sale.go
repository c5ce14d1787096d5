package engine

import (
	"context"
	"fmt"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
)

// ConfirmBid closes the auction by selling the booth to the holder of the
// given bid. The admin may pick any ledger entry, not just the highest; the
// missing-booth and missing-bid cases are silent no-ops.
func (e *Engine) ConfirmBid(ctx context.Context, boothID, bidID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}
	var winning *domain.Bid
	for i := range e.bids[boothID] {
		if e.bids[boothID][i].ID == bidID {
			winning = &e.bids[boothID][i]
			break
		}
	}
	if winning == nil {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}

	amount := winning.Amount
	b.Status = domain.BoothSold
	b.Winner = winning.Vendor
	b.CurrentBid = &amount
	b.WinningCircuits = winning.Circuits
	b.PaymentSubmitted = false
	b.PaymentConfirmed = false

	total := e.totalPayable(amount, winning.Circuits)
	e.notify(winning.Vendor, "Bid won",
		fmt.Sprintf("Congratulations, you won %s. Total payable: %.2f.", b.Title, total),
		domain.NotificationSystem)

	notified := map[string]bool{winning.Vendor: true}
	for _, bid := range e.bids[boothID] {
		if notified[bid.Vendor] {
			continue
		}
		notified[bid.Vendor] = true
		e.notify(bid.Vendor, "Auction closed",
			fmt.Sprintf("The auction for %s has closed.", b.Title),
			domain.NotificationSystem)
	}

	e.auditAppend(ctx, "confirm_bid",
		fmt.Sprintf("booth %s sold to %s for %.2f", boothID, winning.Vendor, amount))
	observability.BoothsSold.WithLabelValues("confirm_bid").Inc()

	title, winner := b.Title, b.Winner
	e.mu.Unlock()

	e.publish(ctx, "booth.sold", map[string]interface{}{
		"booth_id": boothID,
		"winner":   winner,
		"path":     "confirm_bid",
	})

	return domain.OK("%s sold to %s.", title, winner)
}

// SubmitPayment marks the winning vendor's payment as submitted. There is
// no validation of an actual payment. When a processing delay is configured
// the simulated processor confirms through the same admin operation a real
// callback would use.
func (e *Engine) SubmitPayment(ctx context.Context, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok || b.Winner == "" {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}
	b.PaymentSubmitted = true
	title := b.Title
	e.mu.Unlock()

	if e.cfg.PaymentDelay > 0 {
		e.sched.After(e.cfg.PaymentDelay, func() {
			e.ConfirmPayment(context.Background(), boothID)
		})
	}

	e.publish(ctx, "booth.payment.submitted", map[string]interface{}{"booth_id": boothID})
	return domain.OK("Payment for %s submitted.", title)
}

// ConfirmPayment completes the payment lifecycle. Redundant calls are
// no-ops so the winner is never notified twice.
func (e *Engine) ConfirmPayment(ctx context.Context, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok || b.Winner == "" || b.PaymentConfirmed {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}
	b.PaymentConfirmed = true

	e.notify(b.Winner, "Payment confirmed",
		fmt.Sprintf("Your payment for %s has been confirmed.", b.Title),
		domain.NotificationSystem)
	e.auditAppend(ctx, "confirm_payment", fmt.Sprintf("payment confirmed for booth %s", boothID))

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.payment.confirmed", map[string]interface{}{"booth_id": boothID})
	return domain.OK("Payment for %s confirmed.", title)
}

// RevokeBid is the admin escape hatch for a bad sale: the booth reopens,
// the revoked winner's ledger entries are discarded, and the current bid
// falls back to the best surviving bid or the base price.
func (e *Engine) RevokeBid(ctx context.Context, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok || b.Status != domain.BoothSold {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}

	revoked := b.Winner
	kept := e.bids[boothID][:0]
	for _, bid := range e.bids[boothID] {
		if bid.Vendor != revoked {
			kept = append(kept, bid)
		}
	}
	e.bids[boothID] = kept
	delete(e.userBids[revoked], boothID)

	b.Status = domain.BoothOpen
	b.Winner = ""
	b.WinningCircuits = 0
	b.PaymentSubmitted = false
	b.PaymentConfirmed = false
	if _, top, ok := e.currentLeader(boothID); ok {
		b.CurrentBid = &top
	} else {
		base := b.BasePrice
		b.CurrentBid = &base
	}

	e.notify(revoked, "Sale revoked",
		fmt.Sprintf("Your winning bid on %s has been revoked by the organizer.", b.Title),
		domain.NotificationSystem)
	e.auditAppend(ctx, "revoke_bid", fmt.Sprintf("sale of booth %s to %s revoked", boothID, revoked))

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.sale.revoked", map[string]interface{}{"booth_id": boothID})
	return domain.OK("Sale of %s revoked.", title)
}

// AssignBoothToVendor sells a booth outside the auction entirely. There is
// deliberately no guard against assigning over an Open booth with active
// bids; this is an admin override.
func (e *Engine) AssignBoothToVendor(ctx context.Context, boothID, vendor string, price float64) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}

	b.Status = domain.BoothSold
	b.Winner = vendor
	b.CurrentBid = &price
	b.WinningCircuits = 0
	b.PaymentSubmitted = true
	b.PaymentConfirmed = true
	e.registerVendor(vendor)

	e.notify(vendor, "Booth assigned",
		fmt.Sprintf("%s has been assigned to you for %.2f.", b.Title, price),
		domain.NotificationSystem)
	e.auditAppend(ctx, "assign_booth", fmt.Sprintf("booth %s assigned to %s for %.2f", boothID, vendor, price))
	observability.BoothsSold.WithLabelValues("assign").Inc()

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.assigned", map[string]interface{}{
		"booth_id": boothID,
		"vendor":   vendor,
	})
	return domain.OK("%s assigned to %s.", title, vendor)
}

// UnassignBooth reverses a direct assignment back to Open.
func (e *Engine) UnassignBooth(ctx context.Context, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok || b.Status != domain.BoothSold {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}

	former := b.Winner
	b.Status = domain.BoothOpen
	b.Winner = ""
	b.CurrentBid = nil
	b.WinningCircuits = 0
	b.PaymentSubmitted = false
	b.PaymentConfirmed = false

	e.auditAppend(ctx, "unassign_booth", fmt.Sprintf("booth %s unassigned from %s", boothID, former))

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.unassigned", map[string]interface{}{"booth_id": boothID})
	return domain.OK("%s is open again.", title)
}
