//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resto-pos/api/internal/config"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/router"
	"github.com/resto-pos/api/internal/ws"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// nopUploader satisfies storage.Uploader without talking to S3.
type nopUploader struct{}

func (nopUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	return "https://test-bucket.invalid/" + key, nil
}

// TestIntegrationFlow exercises the full order lifecycle against a real
// PostgreSQL database: menu creation, ordering with stock reconciliation and
// charges, the out-of-stock guard, and fulfillment updates.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	// hub.Run() has no shutdown mechanism; the goroutine leaks on test exit,
	// which is acceptable here.
	go hub.Run()

	r := router.New(cfg, queries, pool, hub, nopUploader{})
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Bootstrap admin user (direct insert) ---
	adminID := createAdminUser(t, ctx, pool)

	// --- 2. Login as admin ---
	adminToken := login(t, server, "admin@test.com", "password123")

	// --- 3. Sign up a cashier through the public endpoint, then log in ---
	signupUser(t, server, "cashier@test.com", "cashier")
	cashierToken := login(t, server, "cashier@test.com", "password123")

	// --- 4. Create a menu item with stock (multipart, image required) ---
	menuResp := createMenuItem(t, server, adminToken, "Nasi Goreng", "25000", "10")
	menuID := uuid.MustParse(menuResp["id"].(string))
	if menuResp["net_profit"] != "15000.00" {
		t.Fatalf("net_profit: got %v, want 15000.00", menuResp["net_profit"])
	}

	// --- 5. Dine-in order: 2x 25000 + 10%% service charge = 55000 ---
	orderResp := createOrder(t, server, cashierToken, map[string]interface{}{
		"customer_name":  "Budi",
		"customer_phone": "0812000111",
		"table_no":       "5",
		"pay_cash":       "60000",
		"items": []map[string]interface{}{
			{"menu_id": menuID.String(), "quantity": 2},
		},
	}, http.StatusCreated)
	if orderResp["total_price"] != "55000.00" {
		t.Fatalf("total_price: got %v, want 55000.00", orderResp["total_price"])
	}
	if orderResp["change_due"] != "5000.00" {
		t.Fatalf("change_due: got %v, want 5000.00", orderResp["change_due"])
	}
	orderID := uuid.MustParse(orderResp["id"].(string))

	// --- 6. Stock was decremented inside the transaction ---
	menuAfter := getJSON(t, server, "/menus/"+menuID.String(), cashierToken)
	if menuAfter["current_qty"].(float64) != 8 {
		t.Fatalf("current_qty after order: got %v, want 8", menuAfter["current_qty"])
	}

	// --- 7. Ordering more than remaining stock is rejected, stock unchanged ---
	createOrder(t, server, cashierToken, map[string]interface{}{
		"customer_name":  "Budi",
		"customer_phone": "0812000111",
		"table_no":       "6",
		"pay_cash":       "500000",
		"items": []map[string]interface{}{
			{"menu_id": menuID.String(), "quantity": 9},
		},
	}, http.StatusBadRequest)
	menuAfter = getJSON(t, server, "/menus/"+menuID.String(), cashierToken)
	if menuAfter["current_qty"].(float64) != 8 {
		t.Fatalf("current_qty after rejected order: got %v, want 8", menuAfter["current_qty"])
	}

	// --- 8. Returning customer name autofill ---
	customer := getJSON(t, server, "/customer?phone=0812000111", cashierToken)
	if customer["name"] != "Budi" {
		t.Fatalf("customer name: got %v, want Budi", customer["name"])
	}

	// --- 9. Admin advances fulfillment status ---
	statusResp := putJSON(t, server, "/orders/"+orderID.String()+"/status", map[string]string{
		"status": "Processing",
	}, adminToken, http.StatusOK)
	if statusResp["status"] != "Processing" {
		t.Fatalf("status: got %v, want Processing", statusResp["status"])
	}

	// --- 10. Restock brings quantity back up ---
	restockResp := postJSON(t, server, "/menus/"+menuID.String()+"/restock", map[string]int{
		"quantity": 42,
	}, adminToken, http.StatusOK)
	if restockResp["current_qty"].(float64) != 50 {
		t.Fatalf("current_qty after restock: got %v, want 50", restockResp["current_qty"])
	}

	// --- 11. Admin summary reflects the order ---
	summary := getJSON(t, server, "/admin/summary", adminToken)
	if summary["total_income"] != "55000.00" {
		t.Fatalf("total_income: got %v, want 55000.00", summary["total_income"])
	}
	if summary["total_orders"].(float64) != 1 {
		t.Fatalf("total_orders: got %v, want 1", summary["total_orders"])
	}

	t.Logf("Integration test passed: container=%s, admin=%s, order=%s",
		pgContainer.GetContainerID(), adminID, orderID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Path relative to this test file's package directory.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

func createAdminUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	var id uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, hashed_password, role)
		 VALUES ($1, $2, $3, 'admin')
		 RETURNING id`,
		"Test Admin", "admin@test.com", string(hashedPassword),
	).Scan(&id)
	if err != nil {
		t.Fatalf("create admin user: %v", err)
	}
	return id
}

// --- HTTP helpers ---

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()

	resp := postJSONRaw(t, server, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", http.StatusOK)
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login: no access_token in response: %v", resp)
	}
	return token
}

func signupUser(t *testing.T, server *httptest.Server, email, role string) {
	t.Helper()

	postJSONRaw(t, server, "/auth/signup", map[string]string{
		"full_name": "Test " + role,
		"email":     email,
		"password":  "password123",
		"role":      role,
	}, "", http.StatusCreated)
}

func createMenuItem(t *testing.T, server *httptest.Server, token, name, price, qty string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":        name,
		"price":       price,
		"cost":        "10000",
		"current_qty": qty,
		"minimum_qty": "2",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	part, err := mw.CreateFormFile("image", "menu.jpg")
	if err != nil {
		t.Fatalf("create image part: %v", err)
	}
	if _, err := part.Write([]byte("fake-image-bytes")); err != nil {
		t.Fatalf("write image part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest("POST", server.URL+"/menus", &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("create menu item: status %d, body: %s", resp.StatusCode, body)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode menu response: %v", err)
	}
	return result
}

func createOrder(t *testing.T, server *httptest.Server, token string, body map[string]interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	return postJSONRaw(t, server, "/orders", body, token, wantStatus)
}

func postJSON(t *testing.T, server *httptest.Server, path string, body interface{}, token string, wantStatus int) map[string]interface{} {
	t.Helper()
	return postJSONRaw(t, server, path, body, token, wantStatus)
}

func putJSON(t *testing.T, server *httptest.Server, path string, body interface{}, token string, wantStatus int) map[string]interface{} {
	t.Helper()
	return doJSON(t, server, "PUT", path, body, token, wantStatus)
}

func postJSONRaw(t *testing.T, server *httptest.Server, path string, body interface{}, token string, wantStatus int) map[string]interface{} {
	t.Helper()
	return doJSON(t, server, "POST", path, body, token, wantStatus)
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body interface{}, token string, wantStatus int) map[string]interface{} {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(method, server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d, body: %s", method, path, resp.StatusCode, wantStatus, raw)
	}

	var result map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return result
}

func getJSON(t *testing.T, server *httptest.Server, path string, token string) map[string]interface{} {
	t.Helper()

	req, err := http.NewRequest("GET", server.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, body: %s", path, resp.StatusCode, body)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return result
}
