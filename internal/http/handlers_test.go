package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/engine"
	bamhttp "github.com/robertarktes/booth-auction-manager/internal/http"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	logger := observability.NewLogger()
	eng := engine.New(engine.Config{}, logger)
	h := bamhttp.NewHandlers(eng, nil)
	srv := httptest.NewServer(bamhttp.SetupRouter(h, logger, nil))
	t.Cleanup(srv.Close)
	return srv, eng
}

func seedBooth(t *testing.T, eng *engine.Engine, id string) {
	t.Helper()
	res := eng.AddBooth(context.Background(), domain.Booth{
		ID:               id,
		Title:            "Booth " + id,
		Type:             domain.BoothFood,
		Status:           domain.BoothOpen,
		BasePrice:        500,
		Increment:        50,
		BuyOutPrice:      1500,
		BidEndDate:       time.Now().Add(48 * time.Hour),
		IsBiddingEnabled: true,
		AllowBuyout:      true,
		BuyoutMethod:     domain.BuyoutDirectPay,
	})
	require.True(t, res.Success, res.Message)
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeResult(t *testing.T, resp *http.Response) domain.Result {
	t.Helper()
	defer resp.Body.Close()
	var res domain.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestPlaceBidEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	resp := postJSON(t, srv.URL+"/v1/booths/F1/bids", map[string]interface{}{
		"vendor": "Vendor A", "amount": 550.0, "circuits": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeResult(t, resp)
	assert.True(t, res.Success, res.Message)

	b, err := eng.GetBooth("F1")
	require.NoError(t, err)
	require.NotNil(t, b.CurrentBid)
	assert.Equal(t, 550.0, *b.CurrentBid)
}

func TestPlaceBidEndpoint_ValidationFailureIs200(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	resp := postJSON(t, srv.URL+"/v1/booths/F1/bids", map[string]interface{}{
		"vendor": "Vendor A", "amount": 10.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeResult(t, resp)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "at least")
}

func TestPlaceBidEndpoint_BidLimitKind(t *testing.T) {
	srv, eng := newTestServer(t)
	for _, id := range []string{"F1", "F2", "F3", "F4"} {
		seedBooth(t, eng, id)
	}
	ctx := context.Background()
	for _, id := range []string{"F1", "F2", "F3"} {
		require.True(t, eng.PlaceBid(ctx, "Vendor A", id, 550, 0).Success)
	}

	resp := postJSON(t, srv.URL+"/v1/booths/F4/bids", map[string]interface{}{
		"vendor": "Vendor A", "amount": 550.0,
	})
	res := decodeResult(t, resp)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindBidLimit, res.Kind)
}

func TestPlaceBidEndpoint_MalformedBody(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	resp, err := http.Post(srv.URL+"/v1/booths/F1/bids", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShortIdempotencyKeyRejected(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/booths/F1/bids", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	req.Header.Set("Idempotency-Key", "short")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBooth(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	resp, err := http.Get(srv.URL + "/v1/booths/F1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b domain.Booth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, "Booth F1", b.Title)

	missing, err := http.Get(srv.URL + "/v1/booths/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestStateSnapshotEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")
	require.True(t, eng.AddLocation(context.Background(), "West Hall").Success)

	resp, err := http.Get(srv.URL + "/v1/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap engine.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, domain.EventActive, snap.EventStatus)
	assert.Len(t, snap.Booths, 1)
	assert.Equal(t, []string{"West Hall"}, snap.Locations)
}

func TestDirectBuyOutEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")

	resp := postJSON(t, srv.URL+"/v1/booths/F1/buyout", map[string]interface{}{
		"vendor": "Vendor A", "circuits": 2,
	})
	res := decodeResult(t, resp)
	require.True(t, res.Success, res.Message)

	b, _ := eng.GetBooth("F1")
	assert.Equal(t, domain.BoothSold, b.Status)
	assert.Equal(t, "Vendor A", b.Winner)
	assert.True(t, b.PaymentConfirmed)
}

func TestAdminSaleFlow(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")
	ctx := context.Background()
	require.True(t, eng.PlaceBid(ctx, "Vendor A", "F1", 550, 0).Success)
	bids := eng.BoothBids("F1")
	require.Len(t, bids, 1)

	resp := postJSON(t, srv.URL+"/v1/admin/booths/F1/confirm-bid", map[string]interface{}{
		"bid_id": bids[0].ID,
	})
	require.True(t, decodeResult(t, resp).Success)

	resp = postJSON(t, srv.URL+"/v1/booths/F1/payment", nil)
	require.True(t, decodeResult(t, resp).Success)

	resp = postJSON(t, srv.URL+"/v1/admin/booths/F1/confirm-payment", nil)
	require.True(t, decodeResult(t, resp).Success)

	b, _ := eng.GetBooth("F1")
	assert.True(t, b.PaymentSubmitted)
	assert.True(t, b.PaymentConfirmed)
}

func TestBulkEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")
	seedBooth(t, eng, "F2")

	resp := postJSON(t, srv.URL+"/v1/admin/booths/bulk", map[string]interface{}{
		"booth_ids": []string{"F1"},
		"action":    "delete",
	})
	require.True(t, decodeResult(t, resp).Success)
	assert.Len(t, eng.ListBooths(), 1)
}

func TestBroadcastEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)
	seedBooth(t, eng, "F1")
	require.True(t, eng.PlaceBid(context.Background(), "vendor-a", "F1", 550, 0).Success)

	resp := postJSON(t, srv.URL+"/v1/admin/broadcast", map[string]interface{}{
		"title": "Doors open", "message": "Check-in starts at 8.",
	})
	require.True(t, decodeResult(t, resp).Success)

	notifResp, err := http.Get(srv.URL + "/v1/vendors/vendor-a/notifications")
	require.NoError(t, err)
	defer notifResp.Body.Close()
	var notifs []domain.Notification
	require.NoError(t, json.NewDecoder(notifResp.Body).Decode(&notifs))
	require.NotEmpty(t, notifs)
	assert.Equal(t, "Doors open", notifs[len(notifs)-1].Title)
}

func TestEventStatusEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/admin/event-status", bytes.NewBufferString(`{"status":"paused"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.True(t, decodeResult(t, resp).Success)
	assert.Equal(t, domain.EventPaused, eng.EventStatus())
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/v1/healthz", "/v1/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
