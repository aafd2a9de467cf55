package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// CreateAlertRuleInput carries the rule definition to register.
type CreateAlertRuleInput struct {
	Rule insight.AlertRule `json:"rule"`
}

// ToggleAlertRuleInput flips the enabled flag on a rule.
type ToggleAlertRuleInput struct {
	RuleID string `json:"rule_id"`
}

// RunAlertChecksInput triggers an evaluation pass on the gateway.
type RunAlertChecksInput struct{}

type alertsService interface {
	CreateAlertRule(ctx context.Context, rule insight.AlertRule) (insight.AlertRule, error)
	ToggleAlertRule(ctx context.Context, id string) (insight.AlertRule, error)
	RunAlertChecks(ctx context.Context) (int, error)
}

// CreateAlertRuleCommand registers a new alert rule with the gateway.
type CreateAlertRuleCommand struct {
	service   alertsService
	telemetry Telemetry
}

// NewCreateAlertRuleCommand builds a command instance.
func NewCreateAlertRuleCommand(service alertsService, telemetry Telemetry) *CreateAlertRuleCommand {
	return &CreateAlertRuleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateAlertRuleInput] = (*CreateAlertRuleCommand)(nil)

// Execute registers the rule.
func (c *CreateAlertRuleCommand) Execute(ctx context.Context, msg CreateAlertRuleInput) error {
	if c.service == nil {
		return errors.New("create alert rule command requires service")
	}
	rule, err := c.service.CreateAlertRule(ctx, msg.Rule)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.create_alert_rule", map[string]any{
		"rule_id": rule.ID,
		"metric":  rule.Metric,
	})
	return nil
}

// ToggleAlertRuleCommand enables or disables an existing rule.
type ToggleAlertRuleCommand struct {
	service   alertsService
	telemetry Telemetry
}

// NewToggleAlertRuleCommand builds a command instance.
func NewToggleAlertRuleCommand(service alertsService, telemetry Telemetry) *ToggleAlertRuleCommand {
	return &ToggleAlertRuleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleAlertRuleInput] = (*ToggleAlertRuleCommand)(nil)

// Execute flips the rule's enabled flag.
func (c *ToggleAlertRuleCommand) Execute(ctx context.Context, msg ToggleAlertRuleInput) error {
	if c.service == nil {
		return errors.New("toggle alert rule command requires service")
	}
	rule, err := c.service.ToggleAlertRule(ctx, msg.RuleID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.toggle_alert_rule", map[string]any{
		"rule_id": rule.ID,
		"enabled": rule.Enabled,
	})
	return nil
}

// RunAlertChecksCommand asks the gateway to evaluate every enabled rule.
type RunAlertChecksCommand struct {
	service   alertsService
	telemetry Telemetry
}

// NewRunAlertChecksCommand builds a command instance.
func NewRunAlertChecksCommand(service alertsService, telemetry Telemetry) *RunAlertChecksCommand {
	return &RunAlertChecksCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RunAlertChecksInput] = (*RunAlertChecksCommand)(nil)

// Execute runs the evaluation pass.
func (c *RunAlertChecksCommand) Execute(ctx context.Context, _ RunAlertChecksInput) error {
	if c.service == nil {
		return errors.New("run alert checks command requires service")
	}
	triggered, err := c.service.RunAlertChecks(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.run_alert_checks", map[string]any{
		"triggered": triggered,
	})
	return nil
}
