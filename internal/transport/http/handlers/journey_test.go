package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/app/server"
	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		MFAEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:       "test",
		MigrationsDir:     "../../../../migrations",
		SeedCompanyName:   "Test Company",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		EmailFrom:         "no-reply@test.local",
		AllowSelfSignup:   true,
		RunMigrations:     true,
		RunSeed:           true,
		MaxBodyBytes:      1048576,
		SessionTTL:        time.Hour,
		PasswordResetTTL:  time.Hour,
	}
}

func startApp(t *testing.T) (*server.App, *pgxpool.Pool, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := testConfig(dbURL)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app, err := server.New(ctx, cfg, pool)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	return app, pool, cfg
}

func TestRegistrationJourney(t *testing.T) {
	app, _, _ := startApp(t)

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	email := fmt.Sprintf("Founder-%d@Example.com", time.Now().UnixNano())
	password := "Founder123!"
	registerResp := postJSONStatus(t, client, ts.URL+"/api/v1/auth/register", "", map[string]any{
		"companyName": fmt.Sprintf("Acme %d", time.Now().UnixNano()),
		"fullName":    "Frankie Founder",
		"email":       email,
		"password":    password,
	}, http.StatusCreated)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
		} `json:"user"`
		Company struct {
			ID string `json:"id"`
		} `json:"company"`
	}
	if err := json.Unmarshal(registerResp.Data, &registered); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if registered.User.FullName != "Frankie Founder" {
		t.Fatalf("full name stored as %q", registered.User.FullName)
	}
	if registered.User.Email != strings.ToLower(email) {
		t.Fatalf("email stored as %q, want %q", registered.User.Email, strings.ToLower(email))
	}
	if registered.Company.ID == "" {
		t.Fatal("expected a company on the register response")
	}

	// A fresh registration must be able to log back in with the same email.
	token := login(t, client, ts.URL, email, password)

	me := getJSONStatus(t, client, ts.URL+"/api/v1/auth/me", token, http.StatusOK)
	var profile struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(me.Data, &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.FullName != "Frankie Founder" || profile.Email != strings.ToLower(email) {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	planResp := postJSONStatus(t, client, ts.URL+"/api/v1/company/plan", token, map[string]any{
		"plan": "pro",
	}, http.StatusOK)
	if planResp.Error != nil {
		t.Fatalf("plan selection failed: %+v", planResp.Error)
	}
}

func TestLeaveApprovalJourney(t *testing.T) {
	app, pool, cfg := startApp(t)

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	ctx := context.Background()
	var companyID string
	if err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE lower(name) = lower($1)", cfg.SeedCompanyName).Scan(&companyID); err != nil {
		t.Fatalf("failed to load company: %v", err)
	}

	deptResp := postJSONStatus(t, client, ts.URL+"/api/v1/departments", adminToken, map[string]any{
		"name": fmt.Sprintf("Engineering %d", time.Now().UnixNano()),
	}, http.StatusCreated)
	departmentID := dataField(t, deptResp, "id")

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	employeeUserID := createUser(t, pool, companyID, employeeEmail, employeePassword, auth.RoleEmployee)

	empResp := postJSONStatus(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"userId":       employeeUserID,
		"firstName":    "Jordan",
		"lastName":     "Journey",
		"email":        employeeEmail,
		"role":         auth.RoleEmployee,
		"departmentId": departmentID,
	}, http.StatusCreated)
	_ = dataField(t, empResp, "id")

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)

	start := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	end := time.Now().AddDate(0, 1, 2).Format("2006-01-02")
	applyResp := postJSONStatus(t, client, ts.URL+"/api/v1/leave", employeeToken, map[string]any{
		"type":      "vacation",
		"startDate": start,
		"endDate":   end,
		"reason":    "family trip",
	}, http.StatusCreated)
	requestID := dataField(t, applyResp, "id")
	if status := dataField(t, applyResp, "status"); status != "pending" {
		t.Fatalf("expected pending request, got %s", status)
	}

	overlapResp := postJSONStatus(t, client, ts.URL+"/api/v1/leave", employeeToken, map[string]any{
		"type":      "personal",
		"startDate": end,
		"endDate":   end,
		"reason":    "errand",
	}, http.StatusConflict)
	if overlapResp.Error == nil || overlapResp.Error.Code != "leave_overlap" {
		t.Fatalf("expected leave_overlap error, got %+v", overlapResp.Error)
	}

	selfApprove := postJSONStatus(t, client, ts.URL+"/api/v1/leave/"+requestID+"/approve", employeeToken, nil, http.StatusForbidden)
	if selfApprove.Error == nil {
		t.Fatal("expected self-approval to be rejected")
	}

	approveResp := postJSONStatus(t, client, ts.URL+"/api/v1/leave/"+requestID+"/approve", adminToken, nil, http.StatusOK)
	if status := dataField(t, approveResp, "status"); status != "approved" {
		t.Fatalf("expected approved request, got %s", status)
	}

	cancelResp := postJSONStatus(t, client, ts.URL+"/api/v1/leave/"+requestID+"/cancel", employeeToken, nil, http.StatusConflict)
	if cancelResp.Error == nil {
		t.Fatal("expected cancel of approved request to fail")
	}
}

func TestAttendanceCheckInJourney(t *testing.T) {
	app, pool, cfg := startApp(t)

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	ctx := context.Background()
	var companyID string
	if err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE lower(name) = lower($1)", cfg.SeedCompanyName).Scan(&companyID); err != nil {
		t.Fatalf("failed to load company: %v", err)
	}

	deptResp := postJSONStatus(t, client, ts.URL+"/api/v1/departments", adminToken, map[string]any{
		"name": fmt.Sprintf("Operations %d", time.Now().UnixNano()),
	}, http.StatusCreated)
	departmentID := dataField(t, deptResp, "id")

	employeeEmail := fmt.Sprintf("clock-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	employeeUserID := createUser(t, pool, companyID, employeeEmail, employeePassword, auth.RoleEmployee)

	postJSONStatus(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"userId":       employeeUserID,
		"firstName":    "Casey",
		"lastName":     "Clock",
		"email":        employeeEmail,
		"role":         auth.RoleEmployee,
		"departmentId": departmentID,
	}, http.StatusCreated)

	// A far-ahead timezone keeps the company's "today" distinct from the UTC
	// date for most of the day.
	putJSONStatus(t, client, ts.URL+"/api/v1/company/timezone", adminToken, map[string]any{
		"timezone": "Pacific/Kiritimati",
	}, http.StatusOK)

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)

	checkIn := postJSONStatus(t, client, ts.URL+"/api/v1/attendance/check-in", employeeToken, nil, http.StatusCreated)
	checkInDay := dataField(t, checkIn, "date")
	if checkInDay == "" {
		t.Fatal("expected check-in record with a date")
	}

	snapshot := getJSONStatus(t, client, ts.URL+"/api/v1/attendance/department/"+departmentID, adminToken, http.StatusOK)
	var snap struct {
		Date    string `json:"date"`
		Entries []struct {
			EmployeeID string `json:"employeeId"`
			Status     string `json:"status"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(snapshot.Data, &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	// The record's date is a full timestamp; the snapshot echoes the bare day.
	if !strings.HasPrefix(checkInDay, snap.Date) {
		t.Fatalf("snapshot defaulted to %s, want the company-local day %s", snap.Date, checkInDay)
	}
	found := false
	for _, entry := range snap.Entries {
		if entry.Status != attendance.StatusAbsent {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the checked-in employee in the snapshot")
	}

	second := postJSONStatus(t, client, ts.URL+"/api/v1/attendance/check-in", employeeToken, nil, http.StatusConflict)
	if second.Error == nil {
		t.Fatal("expected duplicate check-in to fail")
	}

	checkOut := postJSONStatus(t, client, ts.URL+"/api/v1/attendance/check-out", employeeToken, nil, http.StatusOK)
	var record struct {
		CheckOut     *time.Time `json:"checkOut"`
		WorkingHours float64    `json:"workingHours"`
	}
	if err := json.Unmarshal(checkOut.Data, &record); err != nil {
		t.Fatalf("failed to decode check-out record: %v", err)
	}
	if record.CheckOut == nil {
		t.Fatal("expected check-out timestamp on record")
	}
}

func createUser(t *testing.T, pool *pgxpool.Pool, companyID, email, password, role string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = pool.QueryRow(context.Background(), `
    INSERT INTO users (company_id, full_name, email, password_hash, role, status)
    VALUES ($1, $2, $3, $4, $5, 'active')
    RETURNING id
  `, companyID, "Test User", email, hash, role).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return id
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSONStatus(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected login token")
	}
	return result.Token
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, payload any, wantStatus int) envelope {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: got status %d, want %d (body: %s)", url, resp.StatusCode, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func putJSONStatus(t *testing.T, client *http.Client, url, token string, payload any, wantStatus int) envelope {
	t.Helper()
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("PUT %s: got status %d, want %d (body: %s)", url, resp.StatusCode, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, wantStatus int) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: got status %d, want %d (body: %s)", url, resp.StatusCode, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func dataField(t *testing.T, env envelope, field string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("failed to decode data object: %v", err)
	}
	value, _ := m[field].(string)
	if value == "" {
		t.Fatalf("expected data field %q, got %v", field, m)
	}
	return value
}
