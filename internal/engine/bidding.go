package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
)

// maxConcurrentBids caps the number of distinct Open booths a vendor may
// hold active bids on at once.
const maxConcurrentBids = 3

// PlaceBid validates and records a vendor's bid. Preconditions are checked
// in order and the first failure wins; on success the ledger append, the
// projection upsert, the booth update and the anti-snipe extension happen as
// one atomic step.
func (e *Engine) PlaceBid(ctx context.Context, vendor, boothID string, amount float64, circuits int) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("not_found").Inc()
		return domain.Fail("Booth not found.")
	}
	if e.eventStatus == domain.EventPaused {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("paused").Inc()
		return domain.Fail("The event is paused. Bidding is temporarily disabled.")
	}
	if b.Status != domain.BoothOpen {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("closed").Inc()
		return domain.Fail("Bidding is closed for this booth.")
	}
	if !b.IsBiddingEnabled {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("closed").Inc()
		return domain.Fail("Bidding is not enabled for this booth.")
	}
	if b.BuyoutMethod == domain.BuyoutAdminApprove && len(e.buyouts[boothID]) > 0 {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("buyout_pending").Inc()
		return domain.Fail("Bidding is paused while a buyout request is under review.")
	}
	minimum := b.HighestAsk()
	if amount < minimum {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("below_minimum").Inc()
		return domain.Fail("Your bid must be at least %.2f.", minimum)
	}
	if _, hasBid := e.userBids[vendor][boothID]; !hasBid && e.activeOpenBidCount(vendor) >= maxConcurrentBids {
		e.mu.Unlock()
		observability.BidRejections.WithLabelValues("limit").Inc()
		return domain.FailKind(domain.KindBidLimit,
			"You already have active bids on %d booths. Remove a bid before placing a new one.", maxConcurrentBids)
	}

	prevLeader, _, hadBids := e.currentLeader(boothID)
	now := e.now()

	e.bids[boothID] = append(e.bids[boothID], domain.Bid{
		ID:       uuid.NewString(),
		Vendor:   vendor,
		Amount:   amount,
		Circuits: circuits,
		PlacedAt: now,
	})
	e.upsertUserBid(vendor, boothID, domain.BidDetails{Amount: amount, Circuits: circuits})
	b.CurrentBid = &amount
	e.registerVendor(vendor)

	extended := false
	if !b.BidEndDate.IsZero() {
		remaining := b.BidEndDate.Sub(now)
		if remaining > 0 && remaining <= e.cfg.ExtensionWindow {
			b.BidEndDate = b.BidEndDate.Add(e.cfg.ExtensionDuration)
			b.Extended = true
			extended = true
			observability.AuctionsExtended.Inc()
		}
	}

	if hadBids && prevLeader != vendor {
		e.notify(prevLeader, "Outbid",
			fmt.Sprintf("You have been outbid on %s. The current bid is %.2f.", b.Title, amount),
			domain.NotificationSystem)
		if extended {
			e.notify(prevLeader, "Auction extended",
				fmt.Sprintf("The auction for %s has been extended by %s.", b.Title, e.cfg.ExtensionDuration),
				domain.NotificationSystem)
		}
	}
	if extended {
		e.notify(vendor, "Auction extended",
			fmt.Sprintf("The auction for %s has been extended by %s.", b.Title, e.cfg.ExtensionDuration),
			domain.NotificationSystem)
	}

	observability.BidsPlaced.Inc()
	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.bid.placed", map[string]interface{}{
		"booth_id": boothID,
		"vendor":   vendor,
		"amount":   amount,
		"extended": extended,
	})
	e.maybeScheduleRival(vendor, boothID)

	return domain.OK("Bid of %.2f placed on %s.", amount, title)
}

// RemoveBid purges every ledger entry the vendor holds on the booth, not
// just the latest, and recomputes the booth's current bid from what remains.
func (e *Engine) RemoveBid(ctx context.Context, vendor, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}
	if b.Status != domain.BoothOpen {
		e.mu.Unlock()
		return domain.Fail("Bids can only be removed while the booth is open.")
	}
	if b.BuyoutMethod == domain.BuyoutAdminApprove && len(e.buyouts[boothID]) > 0 {
		e.mu.Unlock()
		return domain.Fail("Bid removal is locked while a buyout request is under review.")
	}
	if _, hasBid := e.userBids[vendor][boothID]; !hasBid {
		e.mu.Unlock()
		return domain.Fail("You have no active bid on this booth.")
	}

	prevLeader, _, _ := e.currentLeader(boothID)

	kept := e.bids[boothID][:0]
	for _, bid := range e.bids[boothID] {
		if bid.Vendor != vendor {
			kept = append(kept, bid)
		}
	}
	e.bids[boothID] = kept
	delete(e.userBids[vendor], boothID)
	e.recomputeCurrentBid(b)

	if prevLeader == vendor {
		if newLeader, top, ok := e.currentLeader(boothID); ok {
			e.notify(newLeader, "Leading bid",
				fmt.Sprintf("You are now the highest bidder on %s at %.2f.", b.Title, top),
				domain.NotificationSystem)
		}
	}

	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.bid.removed", map[string]interface{}{
		"booth_id": boothID,
		"vendor":   vendor,
	})

	return domain.OK("Your bid on %s has been removed.", title)
}

// maybeScheduleRival queues one synthetic competing bid in response to a
// real vendor's bid. The rival goes through PlaceBid like any caller and is
// subject to every validation rule; it never answers its own bids.
func (e *Engine) maybeScheduleRival(vendor, boothID string) {
	r := e.cfg.RivalBidder
	if !r.Enabled || vendor == r.Name {
		return
	}
	e.sched.After(r.Delay, func() {
		e.mu.Lock()
		b, ok := e.lookupBooth(boothID)
		if !ok || b.Status != domain.BoothOpen {
			e.mu.Unlock()
			return
		}
		amount := b.HighestAsk()
		e.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res := e.PlaceBid(ctx, r.Name, boothID, amount, 0)
		if !res.Success {
			e.log.WithField("booth_id", boothID).Debug("rival bid rejected: ", res.Message)
		}
	})
}
