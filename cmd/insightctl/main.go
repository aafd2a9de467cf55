package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	insight "github.com/goliatone/go-insight/components/insight"
	"github.com/goliatone/go-insight/components/insight/commands"
	"github.com/goliatone/go-insight/pkg/gateway"
	"github.com/goliatone/go-insight/pkg/report"
	"github.com/goliatone/go-insight/pkg/report/rodcapture"
	"github.com/goliatone/go-insight/pkg/session"
)

type cli struct {
	Scaffold     scaffoldCmd     `cmd:"" help:"Scaffold a view definition, provider stub, and manifest entry."`
	Report       reportCmd       `cmd:"" help:"Export a dashboard report as PDF."`
	Views        viewsCmd        `cmd:"" help:"Manage saved filter views on the gateway."`
	Login        loginCmd        `cmd:"" help:"Store a gateway token in the local session file."`
	Logout       logoutCmd       `cmd:"" help:"Clear the local session file."`
	Integrations integrationsCmd `cmd:"" help:"Connect and sync external commerce providers."`
}

type sessionFlags struct {
	Session string `type:"path" help:"Session file holding the token and integration state (default: <user-config-dir>/insightctl/session.json)."`
}

func (f sessionFlags) store() (session.Store, error) {
	path := f.Session
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("insightctl: resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "insightctl", "session.json")
	}
	return session.NewFileStore(path)
}

type gatewayFlags struct {
	sessionFlags
	Gateway string `required:"" help:"Gateway base URL (e.g. https://api.example.com)."`
	Token   string `env:"INSIGHT_TOKEN" help:"Bearer token for gateway requests (falls back to the stored session token)."`
}

func (f gatewayFlags) client() (*gateway.HTTPClient, error) {
	store, err := f.store()
	if err != nil {
		return nil, err
	}
	token, err := resolveToken(f.Token, store)
	if err != nil {
		return nil, err
	}
	return gateway.NewHTTPClient(gateway.HTTPConfig{BaseURL: f.Gateway, Token: token})
}

// resolveToken prefers an explicit flag/env token over the persisted session.
func resolveToken(explicit string, store session.Store) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return store.Token()
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Dashboard tooling for go-insight manifests, reports, and saved views."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type reportCmd struct {
	gatewayFlags
	Kind      string `default:"structured" enum:"snapshot,structured" help:"Report flavor to export."`
	Out       string `required:"" type:"path" help:"Output PDF path."`
	Dashboard string `help:"Dashboard page URL to rasterize chart regions from. Without it, structured reports render placeholders and snapshots fail."`
	Title     string `help:"Title heading the structured report."`
}

func (cmd *reportCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}

	var capturer report.RegionCapturer
	if cmd.Dashboard != "" {
		rodCapturer, err := rodcapture.New(rodcapture.Options{URL: cmd.Dashboard})
		if err != nil {
			return err
		}
		defer func() { _ = rodCapturer.Close() }()
		capturer = rodCapturer
	}

	builder := report.NewBuilder(report.Options{
		Title:    cmd.Title,
		KPIs:     gateway.NewKPIRepository(client),
		Capturer: capturer,
	})

	export := commands.NewExportReportCommand(builder, nil)
	input := commands.ExportReportInput{Kind: cmd.Kind, OutputPath: cmd.Out}
	if err := export.Execute(ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %s report to %s\n", cmd.Kind, cmd.Out)
	return nil
}

type viewsCmd struct {
	List   listViewsCmd  `cmd:"" help:"List saved views."`
	Save   saveViewCmd   `cmd:"" help:"Save the provided filter settings as a named view."`
	Delete deleteViewCmd `cmd:"" help:"Delete a saved view by ID."`
}

type listViewsCmd struct {
	gatewayFlags
}

func (cmd *listViewsCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	views, err := client.ListSavedViews(ctx)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(os.Stdout, "no saved views")
		return nil
	}
	for _, view := range views {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", view.ID, view.Name, describeSettings(view.Settings))
	}
	return nil
}

type saveViewCmd struct {
	gatewayFlags
	Name          string   `required:"" help:"Name for the saved view."`
	Category      string   `help:"Category axis value (omit for no restriction)."`
	Region        string   `help:"Region axis value (omit for no restriction)."`
	DateRange     string   `default:"30d" enum:"7d,30d,90d,all" help:"Date range token."`
	MinOrderValue *float64 `help:"Minimum order value filter."`
}

func (cmd *saveViewCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	settings := insight.FilterSettings{
		DateRange:     cmd.DateRange,
		MinOrderValue: cmd.MinOrderValue,
	}
	if cmd.Category != "" {
		settings.Category = &cmd.Category
	}
	if cmd.Region != "" {
		settings.Region = &cmd.Region
	}
	view, err := client.CreateSavedView(ctx, cmd.Name, settings)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Saved view %s (%s)\n", view.Name, view.ID)
	return nil
}

type deleteViewCmd struct {
	gatewayFlags
	ID string `arg:"" required:"" help:"Saved view ID."`
}

func (cmd *deleteViewCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	if err := client.DeleteSavedView(ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Deleted view %s\n", cmd.ID)
	return nil
}

type loginCmd struct {
	sessionFlags
	Token string `arg:"" required:"" help:"Bearer token to persist."`
}

func (cmd *loginCmd) Run(_ context.Context) error {
	store, err := cmd.store()
	if err != nil {
		return err
	}
	if err := store.SetToken(cmd.Token); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "✓ Session token stored")
	return nil
}

type logoutCmd struct {
	sessionFlags
}

func (cmd *logoutCmd) Run(_ context.Context) error {
	store, err := cmd.store()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "✓ Session cleared")
	return nil
}

type integrationsCmd struct {
	Connect connectIntegrationCmd `cmd:"" help:"Connect a provider and record it in the session."`
	Sync    syncIntegrationCmd    `cmd:"" help:"Sync a connected provider's data into the gateway."`
	Status  integrationStatusCmd  `cmd:"" help:"Show the recorded connection state for a provider."`
}

type connectIntegrationCmd struct {
	gatewayFlags
	Provider string `arg:"" required:"" help:"Provider slug (shopify, stripe, ...)."`
}

func (cmd *connectIntegrationCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	store, err := cmd.store()
	if err != nil {
		return err
	}
	if err := connectProvider(ctx, client, store, cmd.Provider); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Connected %s\n", cmd.Provider)
	return nil
}

type syncIntegrationCmd struct {
	gatewayFlags
	Provider string `arg:"" required:"" help:"Provider slug (shopify, stripe, ...)."`
}

func (cmd *syncIntegrationCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	store, err := cmd.store()
	if err != nil {
		return err
	}
	records, err := syncProvider(ctx, client, store, cmd.Provider)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Synced %d records from %s\n", records, cmd.Provider)
	return nil
}

type integrationStatusCmd struct {
	sessionFlags
	Provider string `arg:"" required:"" help:"Provider slug (shopify, stripe, ...)."`
}

func (cmd *integrationStatusCmd) Run(_ context.Context) error {
	store, err := cmd.store()
	if err != nil {
		return err
	}
	connected, err := store.Flag(session.ConnectedKey(cmd.Provider))
	if err != nil {
		return err
	}
	synced, err := store.Flag(session.SyncedKey(cmd.Provider))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s\tconnected=%t\tsynced=%t\n", cmd.Provider, connected, synced)
	return nil
}

// connectProvider registers the provider with the gateway and records the
// connection in the session so it survives restarts.
func connectProvider(ctx context.Context, client gateway.IntegrationsClient, store session.Store, provider string) error {
	if err := client.ConnectIntegration(ctx, provider); err != nil {
		return err
	}
	return store.SetFlag(session.ConnectedKey(provider), true)
}

// syncProvider triggers a gateway-side sync and marks the provider synced.
func syncProvider(ctx context.Context, client gateway.IntegrationsClient, store session.Store, provider string) (int, error) {
	connected, err := store.Flag(session.ConnectedKey(provider))
	if err != nil {
		return 0, err
	}
	if !connected {
		return 0, fmt.Errorf("insightctl: provider %s is not connected (run integrations connect first)", provider)
	}
	records, err := client.SyncIntegration(ctx, provider)
	if err != nil {
		return 0, err
	}
	if err := store.SetFlag(session.SyncedKey(provider), true); err != nil {
		return 0, err
	}
	return records, nil
}

func describeSettings(settings insight.FilterSettings) string {
	parts := []string{"range=" + settings.DateRange}
	if settings.Category != nil {
		parts = append(parts, "category="+*settings.Category)
	}
	if settings.Region != nil {
		parts = append(parts, "region="+*settings.Region)
	}
	if settings.MinOrderValue != nil {
		parts = append(parts, fmt.Sprintf("min_order_value=%.2f", *settings.MinOrderValue))
	}
	return strings.Join(parts, " ")
}

type scaffoldCmd struct {
	Code            string   `required:"" help:"Fully-qualified view code (e.g. acme.view.funnel)."`
	Name            string   `required:"" help:"Display name for the view."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Category        string   `default:"custom" help:"View category (kpi, revenue, analytics, etc.)."`
	ManifestPath    string   `required:"" type:"path" help:"Path to the view manifest YAML/JSON file to update."`
	SchemaPath      string   `type:"path" help:"Optional path to a JSON schema file for the view configuration."`
	Tag             []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer      []string `help:"Maintainers to record in the manifest."`
	Capabilities    []string `help:"Provider capability labels (html,json,sse,...)."`
	DocsURL         string   `help:"Link to provider documentation."`
	Channel         string   `help:"Distribution channel label (community, partner, internal)."`
	ProviderPackage string   `default:"github.com/goliatone/go-insight/components/insight" help:"Go package where the provider factory lives."`
	ProviderEntry   string   `help:"Factory identifier recorded in the manifest (defaults to New<View>Provider)."`
	ProviderOut     string   `help:"File path for the generated provider stub (defaults to components/insight/providers/<code>_provider.go)."`
	Overwrite       bool     `help:"Overwrite existing provider stub / manifest entry if present."`
	SkipProvider    bool     `name:"skip-provider" help:"Skip provider stub generation."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("insightctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, view := range doc.Views {
			if view.Definition.Code == cmd.Code {
				return fmt.Errorf("insightctl: manifest already defines view %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	baseName := deriveBaseName(cmd.Code)
	providerType := baseName + "Provider"
	providerEntry := cmd.ProviderEntry
	if providerEntry == "" {
		providerEntry = fmt.Sprintf("%s.New%s", cmd.ProviderPackage, providerType)
	}

	entry := insight.ManifestView{
		Definition: insight.ViewDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: insight.ManifestProvider{
			Name:         fmt.Sprintf("%s Provider", cmd.Name),
			Summary:      cmd.Description,
			Entry:        providerEntry,
			Package:      cmd.ProviderPackage,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
			Channel:      cmd.Channel,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	if cmd.Overwrite {
		replaced := false
		for idx := range doc.Views {
			if doc.Views[idx].Definition.Code == cmd.Code {
				doc.Views[idx] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			doc.Views = append(doc.Views, entry)
		}
	} else {
		doc.Views = append(doc.Views, entry)
	}

	sort.Slice(doc.Views, func(i, j int) bool {
		return doc.Views[i].Definition.Code < doc.Views[j].Definition.Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipProvider {
		fmt.Fprintf(os.Stdout, "✓ Added %s to %s (provider entry recorded as %s)\n", cmd.Code, manifestPath, providerEntry)
		return nil
	}

	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "insight", "providers", fmt.Sprintf("%s_provider.go", sanitizeFileName(cmd.Code)))
	}
	if err := writeProviderStub(providerPath, providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s and generated %s\n", cmd.Code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("insightctl: view code %s must contain at least one '.' segment", cmd.Code)
	}
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("insightctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("insightctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*insight.ViewManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := &insight.ViewManifestDocument{
				Version: insight.ManifestVersion,
				Views:   []insight.ManifestView{},
				Source:  path,
			}
			return doc, nil
		}
		return nil, fmt.Errorf("insightctl: stat manifest: %w", err)
	}
	doc, err := insight.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func writeManifest(path string, doc *insight.ViewManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("insightctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("insightctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("insightctl: write manifest: %w", err)
	}
	return nil
}

func writeProviderStub(path, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("insightctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("insightctl: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(`package insight

import (
	"context"
)

// %s fetches data for %s views.
type %s struct{}

// New%s wires the provider into the view registry.
func New%s() ViewProvider {
	return &%s{}
}

// Fetch retrieves the view payload. Replace with your implementation.
func (p *%s) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	_ = meta
	return ViewData{
		"message": "replace with real data",
	}, nil
}
`, providerType, code, providerType, providerType, providerType, providerType, providerType)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("insightctl: write provider stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := parts[len(parts)-1]
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = code
	}
	return strcase.ToCamel(slug)
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
