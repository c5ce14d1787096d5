package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
)

// AddBooth registers a new booth in the inventory.
func (e *Engine) AddBooth(ctx context.Context, b domain.Booth) domain.Result {
	e.mu.Lock()

	if b.ID == "" || b.Title == "" {
		e.mu.Unlock()
		return domain.Fail("Booth id and title are required.")
	}
	if _, exists := e.booths[b.ID]; exists {
		e.mu.Unlock()
		return domain.Fail("A booth with id %s already exists.", b.ID)
	}
	if b.Status == "" {
		b.Status = domain.BoothOpen
	}
	b.Archived = false
	booth := b
	e.booths[b.ID] = &booth
	e.boothOrder = append(e.boothOrder, b.ID)

	e.auditAppend(ctx, "add_booth", fmt.Sprintf("booth %s (%s) created", b.ID, b.Title))
	e.mu.Unlock()

	e.publish(ctx, "booth.created", map[string]interface{}{"booth_id": b.ID})
	return domain.OK("Booth %s created.", b.Title)
}

// UpdateBooth applies an admin edit. Identity and live auction state (the
// ledger-backed current bid, winner and payment flags) are preserved; only
// the configurable fields are copied from the update.
func (e *Engine) UpdateBooth(ctx context.Context, id string, upd domain.Booth) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(id)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}

	b.Title = upd.Title
	b.Type = upd.Type
	b.Size = upd.Size
	b.Status = upd.Status
	b.Location = upd.Location
	b.BasePrice = upd.BasePrice
	b.Increment = upd.Increment
	b.BuyOutPrice = upd.BuyOutPrice
	b.BidEndDate = upd.BidEndDate
	b.IsBiddingEnabled = upd.IsBiddingEnabled
	b.AllowBuyout = upd.AllowBuyout
	b.BuyoutMethod = upd.BuyoutMethod
	b.BiddingPaymentMethod = upd.BiddingPaymentMethod
	b.CircuitLimit = upd.CircuitLimit
	b.AllowDirectAssignment = upd.AllowDirectAssignment
	b.HideBiddingPrice = upd.HideBiddingPrice
	b.HideIncrementValue = upd.HideIncrementValue

	e.auditAppend(ctx, "update_booth", fmt.Sprintf("booth %s updated", id))
	title := b.Title
	e.mu.Unlock()

	e.publish(ctx, "booth.updated", map[string]interface{}{"booth_id": id})
	return domain.OK("Booth %s updated.", title)
}

// Bulk action kinds.
const (
	BulkDelete        = "delete"
	BulkChangeStatus  = "change_status"
	BulkExtendBidding = "extend_bidding"
)

type BulkAction struct {
	Kind        string
	NewStatus   domain.BoothStatus
	ExtendHours int
}

// BulkUpdateBooths applies one action across a selection. Booths the action
// does not apply to are silently skipped. Each batch emits exactly one audit
// entry, not one per booth.
func (e *Engine) BulkUpdateBooths(ctx context.Context, boothIDs []string, action BulkAction) domain.Result {
	e.mu.Lock()

	applied := 0
	switch action.Kind {
	case BulkDelete:
		for _, id := range boothIDs {
			if b, ok := e.lookupBooth(id); ok {
				b.Archived = true
				applied++
			}
		}
	case BulkChangeStatus:
		if action.NewStatus != domain.BoothOpen && action.NewStatus != domain.BoothClosed && action.NewStatus != domain.BoothSold {
			e.mu.Unlock()
			return domain.Fail("Unknown booth status %q.", action.NewStatus)
		}
		for _, id := range boothIDs {
			if b, ok := e.lookupBooth(id); ok {
				b.Status = action.NewStatus
				applied++
			}
		}
	case BulkExtendBidding:
		for _, id := range boothIDs {
			b, ok := e.lookupBooth(id)
			if !ok || b.Status != domain.BoothOpen || b.BidEndDate.IsZero() {
				continue
			}
			b.BidEndDate = b.BidEndDate.Add(time.Duration(action.ExtendHours) * time.Hour)
			applied++
		}
	default:
		e.mu.Unlock()
		return domain.Fail("Unknown bulk action %q.", action.Kind)
	}

	e.auditAppend(ctx, "bulk_"+action.Kind,
		fmt.Sprintf("%s applied to %d of %d selected booths", action.Kind, applied, len(boothIDs)))
	e.mu.Unlock()

	e.publish(ctx, "booth.bulk."+action.Kind, map[string]interface{}{
		"booth_ids": boothIDs,
		"applied":   applied,
	})
	return domain.OK("%s applied to %d booths.", action.Kind, applied)
}

func (e *Engine) AddLocation(ctx context.Context, name string) domain.Result {
	e.mu.Lock()

	name = strings.TrimSpace(name)
	if name == "" {
		e.mu.Unlock()
		return domain.Fail("Location name is required.")
	}
	for _, loc := range e.locations {
		if loc == name {
			e.mu.Unlock()
			return domain.Fail("Location %s already exists.", name)
		}
	}
	e.locations = append(e.locations, name)
	e.auditAppend(ctx, "add_location", fmt.Sprintf("location %s added", name))
	e.mu.Unlock()

	return domain.OK("Location %s added.", name)
}

// DeleteLocation removes the location and blanks it on any booth that used
// it; the booths themselves are untouched.
func (e *Engine) DeleteLocation(ctx context.Context, name string) domain.Result {
	e.mu.Lock()

	kept := e.locations[:0]
	found := false
	for _, loc := range e.locations {
		if loc == name {
			found = true
			continue
		}
		kept = append(kept, loc)
	}
	e.locations = kept
	if !found {
		e.mu.Unlock()
		return domain.Result{Success: true}
	}
	for _, b := range e.booths {
		if b.Location == name {
			b.Location = ""
		}
	}
	e.auditAppend(ctx, "delete_location", fmt.Sprintf("location %s deleted", name))
	e.mu.Unlock()

	return domain.OK("Location %s deleted.", name)
}

// NotifyAllVendors broadcasts a message to every known vendor and records
// it in the broadcast history.
func (e *Engine) NotifyAllVendors(ctx context.Context, title, message string) domain.Result {
	e.mu.Lock()

	if title == "" || message == "" {
		e.mu.Unlock()
		return domain.Fail("Broadcast title and message are required.")
	}
	n := domain.Notification{
		Title:   title,
		Message: message,
		Type:    domain.NotificationBroadcast,
		SentAt:  e.now(),
	}
	e.broadcasts = append(e.broadcasts, n)
	count := 0
	for vendor := range e.vendors {
		e.notify(vendor, title, message, domain.NotificationBroadcast)
		count++
	}
	e.auditAppend(ctx, "broadcast", fmt.Sprintf("broadcast %q sent to %d vendors", title, count))
	e.mu.Unlock()

	e.publish(ctx, "broadcast.sent", map[string]interface{}{"title": title})
	return domain.OK("Broadcast sent to %d vendors.", count)
}

// ToggleWatchlist flips the booth's presence on the vendor's watchlist.
// Watching a booth is pure preference; it never affects bidding.
func (e *Engine) ToggleWatchlist(ctx context.Context, vendor, boothID string) domain.Result {
	e.mu.Lock()

	b, ok := e.lookupBooth(boothID)
	if !ok {
		e.mu.Unlock()
		return domain.Fail("Booth not found.")
	}
	if e.watchlists[vendor] == nil {
		e.watchlists[vendor] = make(map[string]bool)
	}
	e.registerVendor(vendor)
	title := b.Title
	if e.watchlists[vendor][boothID] {
		delete(e.watchlists[vendor], boothID)
		e.mu.Unlock()
		return domain.OK("%s removed from your watchlist.", title)
	}
	e.watchlists[vendor][boothID] = true
	e.mu.Unlock()
	return domain.OK("%s added to your watchlist.", title)
}

// SetEventStatus pauses or resumes the whole event. While paused every
// bid placement is rejected.
func (e *Engine) SetEventStatus(ctx context.Context, status domain.EventStatus) domain.Result {
	e.mu.Lock()

	if status != domain.EventActive && status != domain.EventPaused {
		e.mu.Unlock()
		return domain.Fail("Unknown event status %q.", status)
	}
	e.eventStatus = status
	e.auditAppend(ctx, "set_event_status", fmt.Sprintf("event status set to %s", status))
	e.mu.Unlock()

	e.publish(ctx, "event.status", map[string]interface{}{"status": status})
	return domain.OK("Event status set to %s.", status)
}
