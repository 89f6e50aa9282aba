// Package serp extracts organic search results from rendered result-page
// HTML. Extraction works on a parsed document delivered by the scraper;
// waiting for load and DOM settle happens on the surface side.
package serp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors holds the ordered selector strategy lists. Each list is tried
// in sequence and the first strategy producing usable matches wins, so a
// result-page layout change is a configuration edit, not a code change.
type Selectors struct {
	// Results locates candidate organic result containers.
	Results []string `yaml:"results"`

	// Links locates the destination hyperlink inside a container.
	Links []string `yaml:"links"`

	// Titles locates the heading text inside a container.
	Titles []string `yaml:"titles"`

	// Snippets locates the snippet text inside a container.
	Snippets []string `yaml:"snippets"`

	// Suggestions locates "related searches" suggestion elements.
	Suggestions []string `yaml:"suggestions"`
}

// DefaultSelectors returns the built-in strategy lists for the current
// result-page layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Results: []string{
			`div.g:not(.g-blk):not(.mnr-c)`,
			`.MjjYud:not(.mnr-c)`,
			`.tF2Cxc:not(.mnr-c)`,
			`.yuRUbf`,
			`div[data-ved]:has(h3):not(.mnr-c)`,
		},
		Links: []string{
			`h3 a[href*="http"]`,
			`a[href*="http"]:has(h3)`,
			`a[href^="/url?"]:has(h3)`,
			`a[href*="http"]`,
		},
		Titles: []string{
			`h3`,
			`.LC20lb`,
			`[role="heading"]`,
			`h3 span`,
		},
		Snippets: []string{
			`.VwiC3b`,
			`.s`,
			`.st`,
			`[data-content-feature="1"]`,
		},
		Suggestions: []string{
			`.qR29te`,
			`.b2Rnsc.vIifob`,
			`div[data-hveid] .qR29te`,
		},
	}
}

// LoadSelectors reads a YAML selector file. Lists left empty in the file
// keep their built-in defaults.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("failed to read selectors file: %w", err)
	}

	var override Selectors
	if err := yaml.Unmarshal(data, &override); err != nil {
		return sel, fmt.Errorf("failed to parse selectors file: %w", err)
	}

	if len(override.Results) > 0 {
		sel.Results = override.Results
	}
	if len(override.Links) > 0 {
		sel.Links = override.Links
	}
	if len(override.Titles) > 0 {
		sel.Titles = override.Titles
	}
	if len(override.Snippets) > 0 {
		sel.Snippets = override.Snippets
	}
	if len(override.Suggestions) > 0 {
		sel.Suggestions = override.Suggestions
	}

	return sel, nil
}
