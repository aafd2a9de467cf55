package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	insight "github.com/goliatone/go-insight/components/insight"
)

// HTTPConfig configures the HTTP gateway client.
type HTTPConfig struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// HTTPClient talks to the remote analytics gateway via REST endpoints.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting a live gateway.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  httpClient,
	}, nil
}

var _ Client = (*HTTPClient)(nil)

// FetchOverview implements KPIClient via the overview endpoint.
func (c *HTTPClient) FetchOverview(ctx context.Context, sel insight.FilterSelection) (insight.KPISnapshot, error) {
	var resp kpiResponse
	if err := c.get(ctx, "/kpis/overview", sel.QueryValues(), &resp); err != nil {
		return insight.KPISnapshot{}, err
	}
	return resp.toSnapshot(), nil
}

// FetchFilterOptions implements KPIClient via the filter dictionary endpoint.
func (c *HTTPClient) FetchFilterOptions(ctx context.Context) (insight.FilterOptions, error) {
	var resp filterOptionsResponse
	if err := c.get(ctx, "/kpis/filters", nil, &resp); err != nil {
		return insight.FilterOptions{}, err
	}
	return resp.toOptions(), nil
}

// FetchRevenueTrend implements RevenueClient.
func (c *HTTPClient) FetchRevenueTrend(ctx context.Context, sel insight.FilterSelection) ([]insight.TrendPoint, error) {
	var resp trendResponse
	if err := c.get(ctx, "/kpis/revenue/trend", sel.QueryValues(), &resp); err != nil {
		return nil, err
	}
	return resp.toPoints()
}

// FetchRevenueForecast implements RevenueClient via the forecast endpoint.
func (c *HTTPClient) FetchRevenueForecast(ctx context.Context, days int) ([]insight.TrendPoint, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var resp trendResponse
	if err := c.get(ctx, "/kpis/revenue/forecast", query, &resp); err != nil {
		return nil, err
	}
	return resp.toPoints()
}

// FetchRevenueByCategory implements RevenueClient.
func (c *HTTPClient) FetchRevenueByCategory(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	return c.fetchBreakdown(ctx, "/kpis/revenue/category", sel)
}

// FetchRevenueByRegion implements RevenueClient.
func (c *HTTPClient) FetchRevenueByRegion(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	return c.fetchBreakdown(ctx, "/kpis/revenue/region", sel)
}

func (c *HTTPClient) fetchBreakdown(ctx context.Context, path string, sel insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	var resp breakdownResponse
	if err := c.get(ctx, path, sel.QueryValues(), &resp); err != nil {
		return nil, err
	}
	return resp.toSlices(), nil
}

// FetchRetentionCohorts implements AnalyticsClient.
func (c *HTTPClient) FetchRetentionCohorts(ctx context.Context, sel insight.FilterSelection) (insight.CohortReport, error) {
	var resp cohortResponse
	if err := c.get(ctx, "/analytics/retention", sel.QueryValues(), &resp); err != nil {
		return insight.CohortReport{}, err
	}
	return resp.toReport(), nil
}

// FetchChannelPerformance implements AnalyticsClient.
func (c *HTTPClient) FetchChannelPerformance(ctx context.Context, sel insight.FilterSelection) ([]insight.ChannelMetrics, error) {
	var resp marketingResponse
	if err := c.get(ctx, "/analytics/marketing", sel.QueryValues(), &resp); err != nil {
		return nil, err
	}
	return resp.toMetrics(), nil
}

// FetchAffinity implements AnalyticsClient.
func (c *HTTPClient) FetchAffinity(ctx context.Context, sel insight.FilterSelection) ([]insight.AffinityPair, error) {
	var resp affinityResponse
	if err := c.get(ctx, "/analytics/affinity", sel.QueryValues(), &resp); err != nil {
		return nil, err
	}
	return resp.toPairs(), nil
}

// FetchInsights implements AIClient via the generated commentary feed.
func (c *HTTPClient) FetchInsights(ctx context.Context) ([]insight.Insight, error) {
	var resp insightFeedResponse
	if err := c.get(ctx, "/ai/insights", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toInsights()
}

// Explain implements AIClient by posting a compact series summary.
func (c *HTTPClient) Explain(ctx context.Context, req insight.ExplainRequest) (string, error) {
	var resp struct {
		Explanation string `json:"explanation"`
	}
	if err := c.post(ctx, "/ai/explain", req, &resp); err != nil {
		return "", err
	}
	return resp.Explanation, nil
}

// SendChatMessage implements AIClient via the chat endpoint.
func (c *HTTPClient) SendChatMessage(ctx context.Context, message string) (string, error) {
	req := map[string]string{"message": message}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.post(ctx, "/chat/message", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Compare implements AIClient by requesting a period-over-period breakdown.
func (c *HTTPClient) Compare(ctx context.Context, currentLabel, previousLabel string) (PeriodComparison, error) {
	req := map[string]string{
		"current_period_label":  currentLabel,
		"previous_period_label": previousLabel,
	}
	var resp PeriodComparison
	if err := c.post(ctx, "/ai/compare", req, &resp); err != nil {
		return PeriodComparison{}, err
	}
	return resp, nil
}

// FetchAlertRules implements AlertsClient.
func (c *HTTPClient) FetchAlertRules(ctx context.Context) ([]insight.AlertRule, error) {
	var resp []alertRulePayload
	if err := c.get(ctx, "/alerts/rules", nil, &resp); err != nil {
		return nil, err
	}
	rules := make([]insight.AlertRule, len(resp))
	for i, rule := range resp {
		rules[i] = rule.toRule()
	}
	return rules, nil
}

// CreateAlertRule implements AlertsClient.
func (c *HTTPClient) CreateAlertRule(ctx context.Context, rule insight.AlertRule) (insight.AlertRule, error) {
	req := newAlertRulePayload(rule)
	var resp alertRulePayload
	if err := c.post(ctx, "/alerts/rules", req, &resp); err != nil {
		return insight.AlertRule{}, err
	}
	return resp.toRule(), nil
}

// ToggleAlertRule implements AlertsClient.
func (c *HTTPClient) ToggleAlertRule(ctx context.Context, id string) (insight.AlertRule, error) {
	var resp alertRulePayload
	if err := c.post(ctx, "/alerts/rules/"+url.PathEscape(id)+"/toggle", nil, &resp); err != nil {
		return insight.AlertRule{}, err
	}
	return resp.toRule(), nil
}

// DeleteAlertRule implements AlertsClient.
func (c *HTTPClient) DeleteAlertRule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/alerts/rules/"+url.PathEscape(id), nil, nil, "", nil)
}

// FetchNotifications implements AlertsClient.
func (c *HTTPClient) FetchNotifications(ctx context.Context) ([]insight.AlertNotification, error) {
	var resp []notificationPayload
	if err := c.get(ctx, "/alerts/notifications", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]insight.AlertNotification, len(resp))
	for i, note := range resp {
		parsed, err := note.toNotification()
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

// MarkNotificationsRead implements AlertsClient.
func (c *HTTPClient) MarkNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/alerts/notifications/read", nil, nil)
}

// RunAlertChecks implements AlertsClient; returns how many rules triggered.
func (c *HTTPClient) RunAlertChecks(ctx context.Context) (int, error) {
	var resp struct {
		Triggered int `json:"triggered"`
	}
	if err := c.post(ctx, "/alerts/run", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Triggered, nil
}

// CreateSavedView implements ViewsClient.
func (c *HTTPClient) CreateSavedView(ctx context.Context, name string, settings insight.FilterSettings) (insight.SavedView, error) {
	req := savedViewPayload{Name: name, Settings: settings}
	var resp savedViewPayload
	if err := c.post(ctx, "/users/me/views", req, &resp); err != nil {
		return insight.SavedView{}, err
	}
	return resp.toView(), nil
}

// ListSavedViews implements ViewsClient.
func (c *HTTPClient) ListSavedViews(ctx context.Context) ([]insight.SavedView, error) {
	var resp []savedViewPayload
	if err := c.get(ctx, "/users/me/views", nil, &resp); err != nil {
		return nil, err
	}
	views := make([]insight.SavedView, len(resp))
	for i, view := range resp {
		views[i] = view.toView()
	}
	return views, nil
}

// DeleteSavedView implements ViewsClient.
func (c *HTTPClient) DeleteSavedView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/me/views/"+url.PathEscape(id), nil, nil, "", nil)
}

// ConnectIntegration implements IntegrationsClient.
func (c *HTTPClient) ConnectIntegration(ctx context.Context, provider string) error {
	req := map[string]string{"provider": provider}
	return c.post(ctx, "/integrations/connect", req, nil)
}

// SyncIntegration implements IntegrationsClient; returns synced record count.
func (c *HTTPClient) SyncIntegration(ctx context.Context, provider string) (int, error) {
	var resp struct {
		Records int `json:"records"`
	}
	if err := c.post(ctx, "/integrations/sync/"+url.PathEscape(provider), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Records, nil
}

// AnalyzeCSV implements UploadClient by submitting the file for inspection.
func (c *HTTPClient) AnalyzeCSV(ctx context.Context, filename string, data io.Reader) (UploadAnalysis, error) {
	var resp UploadAnalysis
	if err := c.upload(ctx, "/upload/analyze", filename, data, &resp); err != nil {
		return UploadAnalysis{}, err
	}
	return resp, nil
}

// UploadCSV implements UploadClient by ingesting the file.
func (c *HTTPClient) UploadCSV(ctx context.Context, filename string, data io.Reader) (UploadResult, error) {
	var resp UploadResult
	if err := c.upload(ctx, "/upload/csv", filename, data, &resp); err != nil {
		return UploadResult{}, err
	}
	return resp, nil
}

// UploadPDF implements UploadClient by submitting a strategy document for
// AI analysis.
func (c *HTTPClient) UploadPDF(ctx context.Context, filename string, data io.Reader) (PDFAnalysis, error) {
	var resp PDFAnalysis
	if err := c.upload(ctx, "/upload/pdf", filename, data, &resp); err != nil {
		return PDFAnalysis{}, err
	}
	return resp, nil
}

// ClearUploads implements UploadClient.
func (c *HTTPClient) ClearUploads(ctx context.Context) error {
	return c.post(ctx, "/upload/clear", nil, nil)
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, target any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", target)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.do(ctx, http.MethodPost, path, nil, body, "application/json", target)
}

func (c *HTTPClient) upload(ctx context.Context, path, filename string, data io.Reader, target any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("gateway: build multipart: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return fmt.Errorf("gateway: copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("gateway: close multipart: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType(), target)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, target any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("gateway: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

type kpiResponse struct {
	TotalRevenue      float64 `json:"total_revenue"`
	ActiveOrders      int     `json:"active_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	ActiveCustomers   int     `json:"active_customers"`
	LatestAnalysis    string  `json:"latest_analysis"`
}

func (r kpiResponse) toSnapshot() insight.KPISnapshot {
	return insight.KPISnapshot{
		TotalRevenue:      r.TotalRevenue,
		ActiveOrders:      r.ActiveOrders,
		AverageOrderValue: r.AverageOrderValue,
		ActiveCustomers:   r.ActiveCustomers,
		LatestAnalysis:    r.LatestAnalysis,
	}
}

type filterOptionsResponse struct {
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Labels     struct {
		Category string `json:"category"`
		Region   string `json:"region"`
	} `json:"labels"`
}

func (r filterOptionsResponse) toOptions() insight.FilterOptions {
	return insight.FilterOptions{
		Categories: append([]string(nil), r.Categories...),
		Regions:    append([]string(nil), r.Regions...),
		Labels: insight.FilterLabels{
			Category: r.Labels.Category,
			Region:   r.Labels.Region,
		},
	}
}

type trendPointPayload struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Forecast bool    `json:"forecast"`
}

type trendResponse struct {
	Points []trendPointPayload `json:"points"`
}

func (r trendResponse) toPoints() ([]insight.TrendPoint, error) {
	points := make([]insight.TrendPoint, len(r.Points))
	for i, point := range r.Points {
		parsed, err := time.Parse(time.DateOnly, point.Date)
		if err != nil {
			return nil, fmt.Errorf("gateway: parse trend date %q: %w", point.Date, err)
		}
		points[i] = insight.TrendPoint{Date: parsed, Value: point.Value, Forecast: point.Forecast}
	}
	return points, nil
}

type breakdownResponse struct {
	Slices []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"slices"`
}

func (r breakdownResponse) toSlices() []insight.BreakdownSlice {
	slices := make([]insight.BreakdownSlice, len(r.Slices))
	for i, slice := range r.Slices {
		slices[i] = insight.BreakdownSlice{Name: slice.Name, Value: slice.Value}
	}
	return slices
}

type cohortResponse struct {
	Interval string `json:"interval"`
	Rows     []struct {
		Label     string    `json:"label"`
		Size      int       `json:"size"`
		Retention []float64 `json:"retention"`
	} `json:"rows"`
}

func (r cohortResponse) toReport() insight.CohortReport {
	rows := make([]insight.CohortRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = insight.CohortRow{
			Label:     row.Label,
			Size:      row.Size,
			Retention: append([]float64(nil), row.Retention...),
		}
	}
	return insight.CohortReport{Interval: r.Interval, Rows: rows}
}

type marketingResponse struct {
	Channels []struct {
		Channel string  `json:"channel"`
		Spend   float64 `json:"spend"`
		Revenue float64 `json:"revenue"`
		ROAS    float64 `json:"roas"`
		CAC     float64 `json:"cac"`
	} `json:"channels"`
}

func (r marketingResponse) toMetrics() []insight.ChannelMetrics {
	out := make([]insight.ChannelMetrics, len(r.Channels))
	for i, channel := range r.Channels {
		out[i] = insight.ChannelMetrics{
			Channel: channel.Channel,
			Spend:   channel.Spend,
			Revenue: channel.Revenue,
			ROAS:    channel.ROAS,
			CAC:     channel.CAC,
		}
	}
	return out
}

type affinityResponse struct {
	Pairs []struct {
		ProductA string  `json:"product_a"`
		ProductB string  `json:"product_b"`
		Support  float64 `json:"support"`
		Lift     float64 `json:"lift"`
	} `json:"pairs"`
}

func (r affinityResponse) toPairs() []insight.AffinityPair {
	pairs := make([]insight.AffinityPair, len(r.Pairs))
	for i, pair := range r.Pairs {
		pairs[i] = insight.AffinityPair{
			ProductA: pair.ProductA,
			ProductB: pair.ProductB,
			Support:  pair.Support,
			Lift:     pair.Lift,
		}
	}
	return pairs
}

type insightFeedResponse struct {
	Insights []struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Kind      string `json:"kind"`
		CreatedAt string `json:"created_at"`
	} `json:"insights"`
}

func (r insightFeedResponse) toInsights() ([]insight.Insight, error) {
	out := make([]insight.Insight, len(r.Insights))
	for i, entry := range r.Insights {
		created, err := time.Parse(time.RFC3339, entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("gateway: parse insight timestamp %q: %w", entry.CreatedAt, err)
		}
		out[i] = insight.Insight{
			Title:     entry.Title,
			Content:   entry.Content,
			Kind:      entry.Kind,
			CreatedAt: created,
		}
	}
	return out, nil
}

type alertRulePayload struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Enabled   bool    `json:"enabled"`
}

func newAlertRulePayload(rule insight.AlertRule) alertRulePayload {
	return alertRulePayload{
		ID:        rule.ID,
		Name:      rule.Name,
		Metric:    rule.Metric,
		Condition: rule.Condition,
		Threshold: rule.Threshold,
		Enabled:   rule.Enabled,
	}
}

func (p alertRulePayload) toRule() insight.AlertRule {
	return insight.AlertRule{
		ID:        p.ID,
		Name:      p.Name,
		Metric:    p.Metric,
		Condition: p.Condition,
		Threshold: p.Threshold,
		Enabled:   p.Enabled,
	}
}

type notificationPayload struct {
	ID        string `json:"id"`
	RuleName  string `json:"rule_name"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func (p notificationPayload) toNotification() (insight.AlertNotification, error) {
	created, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return insight.AlertNotification{}, fmt.Errorf("gateway: parse notification timestamp %q: %w", p.CreatedAt, err)
	}
	return insight.AlertNotification{
		ID:        p.ID,
		RuleName:  p.RuleName,
		Message:   p.Message,
		Severity:  p.Severity,
		Read:      p.Read,
		CreatedAt: created,
	}, nil
}

type savedViewPayload struct {
	ID       string                 `json:"id,omitempty"`
	Name     string                 `json:"name"`
	Settings insight.FilterSettings `json:"settings"`
}

func (p savedViewPayload) toView() insight.SavedView {
	return insight.SavedView{ID: p.ID, Name: p.Name, Settings: p.Settings}
}
