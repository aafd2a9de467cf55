package goadmin

import (
	"context"
	"errors"

	activitypkg "github.com/goliatone/go-insight/pkg/activity"
	insightpkg "github.com/goliatone/go-insight/pkg/insight"
)

// MenuBuilder ensures insight entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures insight link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the insight service + feature flags into an admin shell.
type Config struct {
	EnableInsights  bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *insightpkg.Service
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed insight menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableInsights && cfg.Service == nil {
		return nil, errors.New("goadmin: insight service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Insights"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.insights"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "chart-bar"
	}
	return &Admin{cfg: cfg}, nil
}

// Insights exposes the configured insight service when enabled.
func (a *Admin) Insights() *insightpkg.Service {
	if !a.cfg.EnableInsights {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds menu entries when insight support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableInsights || a.cfg.MenuBuilder == nil {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem)
}
