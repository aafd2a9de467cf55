package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	insight "github.com/goliatone/go-insight/components/insight"
)

// SelectionSource exposes the filter slice active at export time. The
// component FilterStore satisfies it.
type SelectionSource interface {
	Selection() insight.FilterSelection
}

// Options configures a report Builder.
type Options struct {
	// Title heads the structured report. Defaults to "Business Report".
	Title string
	// KPIs provides the fresh headline fetch for the executive summary.
	KPIs insight.KPIOverviewRepository
	// Filters supplies the selection serialized into the fresh fetch. Nil
	// means an unrestricted slice.
	Filters SelectionSource
	// Sections lists the capturable regions, in page order. Defaults to the
	// component's section catalog.
	Sections []insight.ReportSection
	// Capturer rasterizes dashboard regions for chart pages.
	Capturer RegionCapturer
	// Clock stamps the generation time. Defaults to time.Now.
	Clock func() time.Time
}

// Builder assembles snapshot and structured PDF exports from live dashboard
// regions and a fresh KPI fetch.
type Builder struct {
	opts Options
}

// NewBuilder constructs a Builder with safe defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Title == "" {
		opts.Title = "Business Report"
	}
	if len(opts.Sections) == 0 {
		opts.Sections = insight.DefaultReportSections()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Builder{opts: opts}
}

// WriteSnapshot rasterizes every capturable region and lays each one on its
// own landscape page. Regions that fail to capture are skipped; a snapshot
// with zero captured regions is an error.
func (b *Builder) WriteSnapshot(ctx context.Context, w io.Writer) error {
	if b.opts.Capturer == nil {
		return fmt.Errorf("report: snapshot export requires a region capturer")
	}
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	captured := 0
	for _, section := range b.opts.Sections {
		png, err := b.opts.Capturer.CapturePNG(ctx, section.ID)
		if err != nil {
			continue
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, section.Label, "", 1, "L", false, 0, "")
		if err := placeImage(pdf, section.ID, png, 10, 20, 277); err != nil {
			return err
		}
		captured++
	}
	if captured == 0 {
		return fmt.Errorf("report: no dashboard regions could be captured")
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write snapshot: %w", err)
	}
	return nil
}

// WriteStructured produces the narrative report: title page with an executive
// summary built from a fresh KPI fetch, an analysis box, then one chart page
// per section. Failed captures render a placeholder instead of aborting the
// report.
func (b *Builder) WriteStructured(ctx context.Context, w io.Writer) error {
	if b.opts.KPIs == nil {
		return fmt.Errorf("report: structured export requires a KPI repository")
	}
	var sel insight.FilterSelection
	if b.opts.Filters != nil {
		sel = b.opts.Filters.Selection()
	}
	snapshot, err := b.opts.KPIs.FetchOverview(ctx, sel)
	if err != nil {
		return fmt.Errorf("report: fetch overview: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, b.opts.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	stamp := b.opts.Clock().Format("January 2, 2006 15:04 MST")
	pdf.CellFormat(0, 6, "Generated on: "+stamp, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	b.drawKPICards(pdf, snapshot)
	pdf.Ln(4)

	if snapshot.LatestAnalysis != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, "AI Business Analysis", "", 1, "L", false, 0, "")
		pdf.SetFillColor(249, 250, 251)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, snapshot.LatestAnalysis, "", "L", true)
	}

	for _, section := range b.opts.Sections {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, section.Label, "", 1, "L", false, 0, "")
		if section.Description != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(107, 114, 128)
			pdf.CellFormat(0, 6, section.Description, "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(2)

		var png []byte
		if b.opts.Capturer != nil {
			png, err = b.opts.Capturer.CapturePNG(ctx, section.ID)
		} else {
			err = ErrRegionUnavailable
		}
		if err != nil {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.SetTextColor(107, 114, 128)
			pdf.CellFormat(0, 10, fmt.Sprintf("[Chart unavailable: %s]", section.ID), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			continue
		}
		if err := placeImage(pdf, section.ID, png, 20, pdf.GetY(), 170); err != nil {
			return err
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write structured report: %w", err)
	}
	return nil
}

// kpiCard pairs a headline metric with its card tint.
type kpiCard struct {
	label string
	value string
	r     int
	g     int
	b     int
}

func kpiCards(snapshot insight.KPISnapshot) []kpiCard {
	return []kpiCard{
		{label: "Total Revenue", value: fmt.Sprintf("$%.2f", snapshot.TotalRevenue), r: 239, g: 246, b: 255},
		{label: "Active Orders", value: fmt.Sprintf("%d", snapshot.ActiveOrders), r: 255, g: 247, b: 237},
		{label: "Avg Order Value", value: fmt.Sprintf("$%.2f", snapshot.AverageOrderValue), r: 240, g: 253, b: 244},
		{label: "Active Customers", value: fmt.Sprintf("%d", snapshot.ActiveCustomers), r: 245, g: 243, b: 255},
	}
}

func (b *Builder) drawKPICards(pdf *fpdf.Fpdf, snapshot insight.KPISnapshot) {
	cards := kpiCards(snapshot)

	const cardWidth, cardHeight, gap = 40.0, 25.0, 3.0
	x := pdf.GetX()
	y := pdf.GetY()
	for i, card := range cards {
		left := x + float64(i)*(cardWidth+gap)
		pdf.SetFillColor(card.r, card.g, card.b)
		pdf.Rect(left, y, cardWidth, cardHeight, "F")
		pdf.SetXY(left+3, y+5)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(cardWidth-6, 4, card.label, "", 0, "L", false, 0, "")
		pdf.SetXY(left+3, y+12)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(17, 24, 39)
		pdf.CellFormat(cardWidth-6, 6, card.value, "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y+cardHeight)
}

func placeImage(pdf *fpdf.Fpdf, regionID string, png []byte, x, y, width float64) error {
	// Unique name per placement so repeated exports of the same region do
	// not collide in fpdf's image registry.
	name := regionID + "-" + uuid.NewString()
	options := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(png))
	if pdf.Err() {
		return fmt.Errorf("report: register capture for %s: %w", regionID, pdf.Error())
	}
	pdf.ImageOptions(name, x, y, width, 0, false, options, 0, "")
	if pdf.Err() {
		return fmt.Errorf("report: place capture for %s: %w", regionID, pdf.Error())
	}
	return nil
}
