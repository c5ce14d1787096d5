package domain

import "time"

type BoothStatus string

const (
	BoothOpen   BoothStatus = "Open"
	BoothClosed BoothStatus = "Closed"
	BoothSold   BoothStatus = "Sold"
)

type BoothType string

const (
	BoothFood      BoothType = "Food"
	BoothExhibitor BoothType = "Exhibitor"
	BoothSponsors  BoothType = "Sponsors"
)

type BuyoutMethod string

const (
	BuyoutDirectPay    BuyoutMethod = "DirectPay"
	BuyoutAdminApprove BuyoutMethod = "AdminApprove"
)

type EventStatus string

const (
	EventActive EventStatus = "active"
	EventPaused EventStatus = "paused"
)

// Booth is a single auctionable exhibition booth. Status Sold implies
// Winner is set; CurrentBid is nil until the first bid or sale.
type Booth struct {
	ID                    string       `json:"id"`
	Title                 string       `json:"title"`
	Type                  BoothType    `json:"type"`
	Size                  string       `json:"size"`
	Status                BoothStatus  `json:"status"`
	Location              string       `json:"location"`
	BasePrice             float64      `json:"base_price"`
	Increment             float64      `json:"increment"`
	BuyOutPrice           float64      `json:"buyout_price"`
	BidEndDate            time.Time    `json:"bid_end_date,omitzero"`
	IsBiddingEnabled      bool         `json:"is_bidding_enabled"`
	AllowBuyout           bool         `json:"allow_buyout"`
	BuyoutMethod          BuyoutMethod `json:"buyout_method"`
	BiddingPaymentMethod  string       `json:"bidding_payment_method"`
	CircuitLimit          int          `json:"circuit_limit"`
	CurrentBid            *float64     `json:"current_bid,omitempty"`
	Winner                string       `json:"winner,omitempty"`
	WinningCircuits       int          `json:"winning_circuits"`
	PaymentSubmitted      bool         `json:"payment_submitted"`
	PaymentConfirmed      bool         `json:"payment_confirmed"`
	AllowDirectAssignment bool         `json:"allow_direct_assignment"`
	HideBiddingPrice      bool         `json:"hide_bidding_price"`
	HideIncrementValue    bool         `json:"hide_increment_value"`
	Extended              bool         `json:"extended"`
	Archived              bool         `json:"archived"`
}

// HighestAsk is the amount the next bid must meet or exceed.
func (b *Booth) HighestAsk() float64 {
	if b.CurrentBid != nil {
		return *b.CurrentBid + b.Increment
	}
	return b.BasePrice + b.Increment
}

// Bid is an immutable ledger entry. The per-booth ledger is append-only;
// removal of a vendor's bids purges their entries wholesale.
type Bid struct {
	ID       string    `json:"id"`
	Vendor   string    `json:"vendor"`
	Amount   float64   `json:"amount"`
	Circuits int       `json:"circuits"`
	PlacedAt time.Time `json:"placed_at"`
}

// BidDetails is the per-(vendor, booth) projection of the vendor's latest
// active bid, used to enforce the concurrent-bid limit.
type BidDetails struct {
	Amount   float64 `json:"amount"`
	Circuits int     `json:"circuits"`
}

type BuyoutRequest struct {
	Vendor      string    `json:"vendor"`
	Circuits    int       `json:"circuits"`
	RequestedAt time.Time `json:"requested_at"`
}

type NotificationType string

const (
	NotificationSystem    NotificationType = "system"
	NotificationBroadcast NotificationType = "broadcast"
)

type Notification struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	SentAt  time.Time        `json:"sent_at"`
}

type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// AdminRecipient is the notification inbox shared by event administrators.
const AdminRecipient = "admin"
