package insight

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ViewManifestDocument models a YAML/JSON manifest describing dashboard views
// and the report sections they expose.
type ViewManifestDocument struct {
	Version  string          `json:"version" yaml:"version"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Package  string          `json:"package,omitempty" yaml:"package,omitempty"`
	Homepage string          `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Views    []ManifestView  `json:"views" yaml:"views"`
	Sections []ReportSection `json:"sections,omitempty" yaml:"sections,omitempty"`
	Source   string          `json:"-" yaml:"-"`
}

// ManifestView describes a single view entry within a manifest.
type ManifestView struct {
	Definition  ViewDefinition   `json:"definition" yaml:"definition"`
	Provider    ManifestProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
	Maintainers []string         `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestProvider captures discovery metadata about a provider implementation.
type ManifestProvider struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry        string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	DocsURL      string   `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Channel      string   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the
// registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ViewManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers definitions, sections, and provider metadata
// from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *ViewManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("insight: manifest document is nil")
	}
	for _, view := range doc.Views {
		if err := r.RegisterDefinition(view.Definition); err != nil {
			return fmt.Errorf("insight: register view %s from %s: %w", view.Definition.Code, doc.Source, err)
		}
		r.recordProviderMetadata(view.Definition.Code, view.Provider)
	}
	for _, section := range doc.Sections {
		if err := r.RegisterSection(section); err != nil {
			return fmt.Errorf("insight: register section %s from %s: %w", section.ID, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*ViewManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("insight: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("insight: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ViewManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ViewManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("insight: manifest is empty")
		}
		return nil, fmt.Errorf("insight: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ViewManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("insight: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Views))
	for idx, view := range doc.Views {
		if view.Definition.Code == "" {
			return fmt.Errorf("insight: manifest view at index %d is missing definition.code", idx)
		}
		if view.Definition.Name == "" {
			return fmt.Errorf("insight: manifest view %s missing definition.name", view.Definition.Code)
		}
		if _, exists := seen[view.Definition.Code]; exists {
			return fmt.Errorf("insight: manifest duplicates view code %s", view.Definition.Code)
		}
		seen[view.Definition.Code] = struct{}{}
	}
	sectionSeen := make(map[string]struct{}, len(doc.Sections))
	for idx, section := range doc.Sections {
		if section.ID == "" {
			return fmt.Errorf("insight: manifest section at index %d is missing id", idx)
		}
		if _, exists := sectionSeen[section.ID]; exists {
			return fmt.Errorf("insight: manifest duplicates section id %s", section.ID)
		}
		sectionSeen[section.ID] = struct{}{}
	}
	return nil
}

func (doc *ViewManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

func (p ManifestProvider) isZero() bool {
	return p.Name == "" &&
		p.Summary == "" &&
		p.Entry == "" &&
		p.Package == "" &&
		p.DocsURL == "" &&
		len(p.Capabilities) == 0 &&
		p.Channel == ""
}
