package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/booth-auction-manager/internal/adapters/mongo"
	"github.com/robertarktes/booth-auction-manager/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/booth-auction-manager/internal/adapters/redis"
	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/engine"
	httphandler "github.com/robertarktes/booth-auction-manager/internal/http"
	"github.com/robertarktes/booth-auction-manager/internal/idempotency"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
	"github.com/robertarktes/booth-auction-manager/internal/rateLimit"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const baseURL = "http://localhost:8089"

func TestIntegration_BidConfirmPay(t *testing.T) {
	ctx := context.Background()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForExec([]string{"mongo", "--eval", "db.runCommand('ping').ok"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer mongoContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	rabbitContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-management",
			ExposedPorts: []string{"5672/tcp", "15672/tcp"},
			WaitingFor:   wait.ForHTTP("/api/health").WithPort("15672"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitContainer.Terminate(ctx)

	mongoHost, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mongoPort, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatal(err)
	}
	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}
	rabbitHost, err := rabbitContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rabbitPort, err := rabbitContainer.MappedPort(ctx, "5672")
	if err != nil {
		t.Fatal(err)
	}

	mongoURI := "mongodb://" + mongoHost + ":" + mongoPort.Port()
	redisAddr := redisHost + ":" + redisPort.Port()
	rabbitURL := "amqp://guest:guest@" + rabbitHost + ":" + rabbitPort.Port() + "/"

	// Setup dependencies
	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	mirror := mongoadapter.NewAuditMirror(mongoClient.Database("bam"), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: redisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), time.Hour)
	rl := rateLimit.NewRateLimiter(redisCache)

	rabbitConn, err := amqp.Dial(rabbitURL)
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitConn.Close()
	rabbitPub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := rabbit.NewConsumer(rabbitConn, "bam-test", "booth.#")
	if err != nil {
		t.Fatal(err)
	}
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}

	eng := engine.New(engine.Config{}, logger,
		engine.WithPublisher(rabbitPub),
		engine.WithAuditMirror(mirror),
	)
	handlers := httphandler.NewHandlers(eng, idemp)
	r := httphandler.SetupRouter(handlers, logger, rl)

	// Start server
	srv := &http.Server{Addr: ":8089", Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", err)
		}
	}()
	defer srv.Shutdown(ctx)
	time.Sleep(200 * time.Millisecond)

	// Create a booth through the admin API
	booth := map[string]interface{}{
		"id":                 "F1",
		"title":              "Corner Grill",
		"type":               "Food",
		"status":             "Open",
		"base_price":         500.0,
		"increment":          50.0,
		"buyout_price":       1500.0,
		"bid_end_date":       time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"is_bidding_enabled": true,
		"allow_buyout":       true,
		"buyout_method":      "DirectPay",
	}
	postResult(t, "/v1/admin/booths", booth, "")

	// Place a bid with an idempotency key, then replay it: the second call
	// must come back identical without appending a second ledger entry.
	key := uuid.New().String()
	bid := map[string]interface{}{"vendor": "Harbor Coffee Co", "amount": 550.0, "circuits": 1}
	first := postResult(t, "/v1/booths/F1/bids", bid, key)
	if !first.Success {
		t.Fatalf("bid failed: %s", first.Message)
	}
	replay := postResult(t, "/v1/booths/F1/bids", bid, key)
	if !replay.Success || replay.Message != first.Message {
		t.Fatalf("idempotent replay mismatch: %+v vs %+v", replay, first)
	}
	bids := eng.BoothBids("F1")
	if len(bids) != 1 {
		t.Fatalf("expected 1 bid after replay, got %d", len(bids))
	}

	// The bid must have fanned out on the topic exchange. Earlier events
	// (booth.created) share the binding, so drain until it shows up.
	waitForEvent(t, deliveries, "booth.bid.placed")

	// Confirm the bid and walk the payment lifecycle
	postResult(t, "/v1/admin/booths/F1/confirm-bid", map[string]interface{}{"bid_id": bids[0].ID}, "")
	postResult(t, "/v1/booths/F1/payment", map[string]interface{}{}, "")
	postResult(t, "/v1/admin/booths/F1/confirm-payment", map[string]interface{}{}, "")

	resp, err := http.Get(baseURL + "/v1/booths/F1")
	if err != nil {
		t.Fatal(err)
	}
	var got domain.Booth
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Status != domain.BoothSold || got.Winner != "Harbor Coffee Co" || !got.PaymentConfirmed {
		t.Fatalf("unexpected final booth state: %+v", got)
	}

	// The audit mirror must hold the trail the engine derived.
	entries, err := mirror.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.Action] = true
	}
	for _, action := range []string{"add_booth", "confirm_bid", "confirm_payment"} {
		if !seen[action] {
			t.Errorf("audit mirror missing action %s", action)
		}
	}
}

func waitForEvent(t *testing.T, deliveries <-chan amqp.Delivery, routingKey string) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case d := <-deliveries:
			if d.RoutingKey == routingKey {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", routingKey)
		}
	}
}

func postResult(t *testing.T, path string, body interface{}, idempotencyKey string) domain.Result {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest("POST", baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s returned status %d", path, resp.StatusCode)
	}
	var res domain.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("POST %s failed: %s", path, res.Message)
	}
	return res
}
