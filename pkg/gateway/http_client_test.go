package gateway

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	insight "github.com/goliatone/go-insight/components/insight"
)

func TestHTTPClientFetchOverview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kpis/overview" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		query := r.URL.Query()
		if query.Get("days") != "30" {
			t.Fatalf("expected days=30, got %q", query.Get("days"))
		}
		if query.Has("category") || query.Has("region") {
			t.Fatalf("absent axes must not appear in query: %v", query)
		}
		resp := kpiResponse{
			TotalRevenue:      52450,
			ActiveOrders:      126,
			AverageOrderValue: 85.2,
			ActiveCustomers:   1240,
			LatestAnalysis:    "Revenue is trending up.",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	snapshot, err := client.FetchOverview(context.Background(), insight.FilterSelection{DateRange: "30d"})
	if err != nil {
		t.Fatalf("fetch overview: %v", err)
	}
	if snapshot.TotalRevenue != 52450 || snapshot.ActiveOrders != 126 {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
}

func TestHTTPClientForwardsSelectionAxes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("category") != "Electronics" {
			t.Fatalf("expected category param, got %q", query.Get("category"))
		}
		if query.Get("region") != "Asia" {
			t.Fatalf("expected region param, got %q", query.Get("region"))
		}
		_ = json.NewEncoder(w).Encode(breakdownResponse{})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	category := "Electronics"
	region := "Asia"
	sel := insight.FilterSelection{Category: &category, Region: &region, DateRange: "all"}
	if _, err := client.FetchRevenueByCategory(context.Background(), sel); err != nil {
		t.Fatalf("fetch breakdown: %v", err)
	}
}

func TestHTTPClientFetchTrendParsesDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := trendResponse{Points: []trendPointPayload{
			{Date: "2026-08-01", Value: 1800},
			{Date: "2026-08-02", Value: 1950, Forecast: true},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	points, err := client.FetchRevenueTrend(context.Background(), insight.FilterSelection{DateRange: "7d"})
	if err != nil {
		t.Fatalf("fetch trend: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Date.Day() != 1 || points[0].Date.Month() != 8 {
		t.Fatalf("unexpected date %v", points[0].Date)
	}
	if !points[1].Forecast {
		t.Fatalf("expected forecast flag preserved")
	}
}

func TestHTTPClientSavedViewPreservesNilAxes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload savedViewPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Settings.Category != nil {
			t.Fatalf("expected null category, got %v", *payload.Settings.Category)
		}
		payload.ID = "view-1"
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	region := "Europe"
	view, err := client.CreateSavedView(context.Background(), "quarter review", insight.FilterSettings{
		Region:    &region,
		DateRange: "90d",
	})
	if err != nil {
		t.Fatalf("create view: %v", err)
	}
	if view.ID != "view-1" {
		t.Fatalf("expected assigned id, got %q", view.ID)
	}
	if view.Settings.Category != nil {
		t.Fatalf("category must round-trip as nil")
	}
	if view.Settings.Region == nil || *view.Settings.Region != "Europe" {
		t.Fatalf("region lost in round trip: %#v", view.Settings)
	}
}

func TestHTTPClientRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchInsights(context.Background()); err == nil {
		t.Fatalf("expected error for 502 response")
	} else if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestHTTPClientUploadCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/csv" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Fatalf("expected multipart request, got %q", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("read form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "orders.csv" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if !strings.HasPrefix(string(body), "date,revenue") {
			t.Fatalf("unexpected file content %q", body)
		}
		_ = json.NewEncoder(w).Encode(UploadResult{Inserted: 2})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	csv := "date,revenue\n2026-08-01,1800\n2026-08-02,1950\n"
	result, err := client.UploadCSV(context.Background(), "orders.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("upload csv: %v", err)
	}
	if result.Inserted != 2 {
		t.Fatalf("expected 2 inserts, got %d", result.Inserted)
	}
}

func TestHTTPClientCompare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/compare" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["current_period_label"] != "This Month" || req["previous_period_label"] != "Last Month" {
			t.Fatalf("unexpected period labels: %v", req)
		}
		_ = json.NewEncoder(w).Encode(PeriodComparison{
			Current:     map[string]float64{"total_revenue": 52000},
			Previous:    map[string]float64{"total_revenue": 45000},
			Delta:       map[string]string{"revenue_change": "+15.5%"},
			Explanation: "Revenue growth was driven by order volume.",
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	comparison, err := client.Compare(context.Background(), "This Month", "Last Month")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Delta["revenue_change"] != "+15.5%" {
		t.Fatalf("unexpected delta: %#v", comparison.Delta)
	}
	if comparison.Explanation == "" {
		t.Fatal("expected AI commentary in comparison")
	}
}

func TestHTTPClientUploadPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/pdf" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("read form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "strategy.pdf" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		_ = json.NewEncoder(w).Encode(PDFAnalysis{
			Title:   "Analysis: strategy.pdf",
			Insight: "The document signals a shift toward APAC expansion.",
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	analysis, err := client.UploadPDF(context.Background(), "strategy.pdf", strings.NewReader("%PDF-1.7 fake"))
	if err != nil {
		t.Fatalf("upload pdf: %v", err)
	}
	if analysis.Title != "Analysis: strategy.pdf" || analysis.Insight == "" {
		t.Fatalf("unexpected analysis: %#v", analysis)
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}
