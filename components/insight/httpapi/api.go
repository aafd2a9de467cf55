package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-insight/components/insight/commands"
)

// Executor is the command surface transports mount. It hides the concrete
// command types so routers depend only on inputs.
type Executor interface {
	SaveView(ctx context.Context, input commands.SaveViewInput) error
	LoadView(ctx context.Context, input commands.LoadViewInput) error
	DeleteView(ctx context.Context, input commands.DeleteViewInput) error
	Drill(ctx context.Context, input commands.DrillInput) error
	ExportReport(ctx context.Context, input commands.ExportReportInput) error
}

// CommandExecutor bundles the shared commands behind the Executor interface.
type CommandExecutor struct {
	Save   gocommand.Commander[commands.SaveViewInput]
	Load   gocommand.Commander[commands.LoadViewInput]
	Delete gocommand.Commander[commands.DeleteViewInput]
	Toggle gocommand.Commander[commands.DrillInput]
	Export gocommand.Commander[commands.ExportReportInput]
}

var _ Executor = (*CommandExecutor)(nil)

// SaveView persists the active filter selection.
func (e *CommandExecutor) SaveView(ctx context.Context, input commands.SaveViewInput) error {
	return e.Save.Execute(ctx, input)
}

// LoadView restores a stored filter snapshot.
func (e *CommandExecutor) LoadView(ctx context.Context, input commands.LoadViewInput) error {
	return e.Load.Execute(ctx, input)
}

// DeleteView removes a stored view.
func (e *CommandExecutor) DeleteView(ctx context.Context, input commands.DeleteViewInput) error {
	return e.Delete.Execute(ctx, input)
}

// Drill toggles a drill-down selection.
func (e *CommandExecutor) Drill(ctx context.Context, input commands.DrillInput) error {
	return e.Toggle.Execute(ctx, input)
}

// ExportReport renders a report PDF.
func (e *CommandExecutor) ExportReport(ctx context.Context, input commands.ExportReportInput) error {
	return e.Export.Execute(ctx, input)
}

// Handlers exposes plain net/http endpoints backed by shared commands.
type Handlers struct {
	Exec Executor
}

func (h *Handlers) HandleSaveView(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveViewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Exec.SaveView(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleLoadView(w http.ResponseWriter, r *http.Request, viewID string) {
	if err := h.Exec.LoadView(r.Context(), commands.LoadViewInput{ViewID: viewID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDeleteView(w http.ResponseWriter, r *http.Request, viewID string) {
	if err := h.Exec.DeleteView(r.Context(), commands.DeleteViewInput{ViewID: viewID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDrill(w http.ResponseWriter, r *http.Request) {
	var payload commands.DrillInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Exec.Drill(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleExportReport(w http.ResponseWriter, r *http.Request) {
	var payload commands.ExportReportInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Exec.ExportReport(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
