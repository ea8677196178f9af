// Package reference holds the static team and venue tables shown alongside predictions.
//
// The prediction core never validates against the catalog; it is presentation data.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownTeam indicates a lookup for a team the catalog does not list
var ErrUnknownTeam = errors.New("unknown team")

// BattingCard summarises a team's chasing record
type BattingCard struct {
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	AvgScore     int     `yaml:"avg_score" json:"avg_score"`
	PowerplayRR  float64 `yaml:"powerplay_rr" json:"powerplay_rr"`
	DeathOversRR float64 `yaml:"death_overs_rr" json:"death_overs_rr"`
}

// BowlingCard summarises a team's defending record
type BowlingCard struct {
	WinRate           float64 `yaml:"win_rate" json:"win_rate"`
	AvgConceded       int     `yaml:"avg_conceded" json:"avg_conceded"`
	PowerplayEconomy  float64 `yaml:"powerplay_economy" json:"powerplay_economy"`
	DeathOversEconomy float64 `yaml:"death_overs_economy" json:"death_overs_economy"`
}

// Team is one franchise entry
type Team struct {
	Name    string      `yaml:"name" json:"name"`
	Colour  string      `yaml:"colour" json:"colour"`
	Batting BattingCard `yaml:"batting" json:"batting"`
	Bowling BowlingCard `yaml:"bowling" json:"bowling"`
}

// Defaults apply to teams missing from the catalog
type Defaults struct {
	BattingColour string      `yaml:"batting_colour"`
	BowlingColour string      `yaml:"bowling_colour"`
	Batting       BattingCard `yaml:"batting"`
	Bowling       BowlingCard `yaml:"bowling"`
}

// Catalog is the loaded reference data. It is read-only after load.
type Catalog struct {
	Teams    []Team   `yaml:"teams"`
	Venues   []string `yaml:"venues"`
	Defaults Defaults `yaml:"defaults"`

	byName map[string]Team
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the built-in one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse reference catalog: %w", err)
	}
	if len(c.Teams) < 2 {
		return nil, fmt.Errorf("reference catalog needs at least two teams, got %d", len(c.Teams))
	}
	if len(c.Venues) == 0 {
		return nil, errors.New("reference catalog lists no venues")
	}

	c.byName = make(map[string]Team, len(c.Teams))
	for _, t := range c.Teams {
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate team %q in reference catalog", t.Name)
		}
		c.byName[t.Name] = t
	}
	return &c, nil
}

// TeamNames returns the team names in catalog order
func (c *Catalog) TeamNames() []string {
	names := make([]string, len(c.Teams))
	for i, t := range c.Teams {
		names[i] = t.Name
	}
	return names
}

// VenueNames returns the venue names in catalog order
func (c *Catalog) VenueNames() []string {
	return slices.Clone(c.Venues)
}

// Team looks up a team by name
func (c *Catalog) Team(name string) (Team, error) {
	t, ok := c.byName[name]
	if !ok {
		return Team{}, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}
	return t, nil
}

// Opponents lists every team except the batting side, in catalog order
func (c *Catalog) Opponents(batting string) []string {
	out := make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		if t.Name != batting {
			out = append(out, t.Name)
		}
	}
	return out
}

// BattingCardFor returns the team's batting card, or the default for unknown teams
func (c *Catalog) BattingCardFor(name string) BattingCard {
	if t, ok := c.byName[name]; ok {
		return t.Batting
	}
	return c.Defaults.Batting
}

// BowlingCardFor returns the team's bowling card, or the default for unknown teams
func (c *Catalog) BowlingCardFor(name string) BowlingCard {
	if t, ok := c.byName[name]; ok {
		return t.Bowling
	}
	return c.Defaults.Bowling
}

// ColourFor returns the team colour, falling back to the side's default
func (c *Catalog) ColourFor(name string, batting bool) string {
	if t, ok := c.byName[name]; ok && t.Colour != "" {
		return t.Colour
	}
	if batting {
		return c.Defaults.BattingColour
	}
	return c.Defaults.BowlingColour
}

// Matchup is the side-by-side comparison of the two teams in a chase
type Matchup struct {
	BattingTeam   string      `json:"batting_team"`
	BattingColour string      `json:"batting_colour"`
	Batting       BattingCard `json:"batting"`
	BowlingTeam   string      `json:"bowling_team"`
	BowlingColour string      `json:"bowling_colour"`
	Bowling       BowlingCard `json:"bowling"`
}

// Compare builds the matchup card for a chase, using defaults for unlisted teams
func (c *Catalog) Compare(batting, bowling string) Matchup {
	return Matchup{
		BattingTeam:   batting,
		BattingColour: c.ColourFor(batting, true),
		Batting:       c.BattingCardFor(batting),
		BowlingTeam:   bowling,
		BowlingColour: c.ColourFor(bowling, false),
		Bowling:       c.BowlingCardFor(bowling),
	}
}
