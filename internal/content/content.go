// Package content holds the portfolio copy: hero, about, skills,
// projects and publications. The built-in profile can be overridden by a
// YAML file, which is watched and hot reloaded.
package content

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
)

const (
	ProjectStagger     = 150 * time.Millisecond
	PublicationStagger = 200 * time.Millisecond
	TagStagger         = 100 * time.Millisecond
)

type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Numeral is the Greek badge shown on the project card.
func (p Project) Numeral() string { return glyph.Numeral(p.ID) }

// CardID names the project's reveal card.
func (p Project) CardID() string { return fmt.Sprintf("project-%d", p.ID) }

type Publication struct {
	ID       int    `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Journal  string `yaml:"journal" json:"journal"`
	Year     string `yaml:"year" json:"year"`
	Authors  string `yaml:"authors" json:"authors"`
	Abstract string `yaml:"abstract" json:"abstract"`
}

func (p Publication) CardID() string { return fmt.Sprintf("publication-%d", p.ID) }

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Profile is everything the page renders.
type Profile struct {
	Name         string        `yaml:"name" json:"name"`
	Title        string        `yaml:"title" json:"title"`
	Tagline      string        `yaml:"tagline" json:"tagline"`
	About        []string      `yaml:"about" json:"about"`
	Skills       []string      `yaml:"skills" json:"skills"`
	Projects     []Project     `yaml:"projects" json:"projects"`
	Publications []Publication `yaml:"publications" json:"publications"`
	Email        string        `yaml:"email" json:"email"`
	Links        []Link        `yaml:"links" json:"links"`
	// Animate turns scroll-reveal animations on; when false every card starts visible.
	Animate *bool `yaml:"animate" json:"animate,omitempty"`
}

func (p Profile) animate() bool {
	return p.Animate == nil || *p.Animate
}

// Cards lists every revealable card with its staggered delay.
func (p Profile) Cards() []reveal.Card {
	animate := p.animate()
	cards := make([]reveal.Card, 0, len(p.Projects)+len(p.Publications))
	for i, proj := range p.Projects {
		cards = append(cards, reveal.Card{ID: proj.CardID(), Delay: time.Duration(i) * ProjectStagger, Animate: animate})
	}
	for i, pub := range p.Publications {
		cards = append(cards, reveal.Card{ID: pub.CardID(), Delay: time.Duration(i) * PublicationStagger, Animate: animate})
	}
	return cards
}

// TagDelay staggers the tags of the project at index i after its card.
func TagDelay(i, tag int) time.Duration {
	return time.Duration(i)*ProjectStagger + time.Duration(tag)*TagStagger
}

// Validate rejects profiles the page cannot render unambiguously.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("content: name is required")
	}
	seen := map[string]bool{}
	for _, proj := range p.Projects {
		if seen[proj.CardID()] {
			return fmt.Errorf("content: duplicate project id %d", proj.ID)
		}
		seen[proj.CardID()] = true
	}
	for _, pub := range p.Publications {
		if seen[pub.CardID()] {
			return fmt.Errorf("content: duplicate publication id %d", pub.ID)
		}
		seen[pub.CardID()] = true
	}
	return nil
}

// Parse overlays YAML onto the built-in profile. Keys absent from the
// document keep their defaults; present lists replace the default list.
func Parse(data []byte) (Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("content: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Load reads and parses path. A missing file yields the built-in profile
// together with an error satisfying errors.Is(err, os.ErrNotExist).
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("content: read %s: %w", path, err)
	}
	return Parse(data)
}

// Store publishes the current profile to concurrent readers.
type Store struct {
	cur atomic.Pointer[Profile]
}

// NewStore starts with p.
func NewStore(p Profile) *Store {
	s := &Store{}
	s.Set(p)
	return s
}

func (s *Store) Get() Profile { return *s.cur.Load() }

func (s *Store) Set(p Profile) { s.cur.Store(&p) }
