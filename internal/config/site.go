package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kaushiktak19/blog-website/internal/models"
)

//go:embed site.yaml
var defaultSite []byte

// Site is the editorial configuration of the landing page.
type Site struct {
	DefaultAvatar    string               `yaml:"default_avatar"`
	PrioritizedTags  []string             `yaml:"prioritized_tags"`
	PreferredAuthors []string             `yaml:"preferred_authors"`
	Authors          []models.AuthorInfo  `yaml:"authors"`
	Testimonials     []models.Testimonial `yaml:"testimonials"`
}

// LoadSite reads the site file at path, or the embedded default when path
// is empty.
func LoadSite(path string) (Site, error) {
	data := defaultSite
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Site{}, fmt.Errorf("read site config %s: %w", path, err)
		}
	}
	return ParseSite(data)
}

func ParseSite(data []byte) (Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return Site{}, fmt.Errorf("parse site config: %w", err)
	}
	return site, nil
}
