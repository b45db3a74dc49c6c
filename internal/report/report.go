// Package report turns stored gym detail records into ranked text and HTML
// summaries. Rendering is a pure function of the record, the reference
// catalogs and the injected team table; it touches neither the network nor
// the store.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/gymwatch/internal/catalog"
	"github.com/banshee-data/gymwatch/internal/pogo"
)

// ErrUnknownTeam marks an owning-team id outside 0..3. Rather than defaulting
// to unclaimed, the gym's render is rejected; other gyms are unaffected.
var ErrUnknownTeam = errors.New("team id out of range")

const ansiReset = "\x1b[0m"

// Team is one row of the team table injected into the renderer.
type Team struct {
	ID    int
	Label string
	ANSI  string // terminal colour prefix for the label
	CSS   string // banner colour on the HTML page
}

// TeamTable maps owning-team ids to display metadata.
type TeamTable []Team

// DefaultTeams returns the standard four-team table. Team 0 is "unclaimed".
func DefaultTeams() TeamTable {
	return TeamTable{
		{ID: 0, Label: "None", ANSI: "\x1b[0;37;40m", CSS: "rgba(0,0,0,.4)"},
		{ID: 1, Label: "Mystic", ANSI: "\x1b[0;36;40m", CSS: "rgba(74,138,202,.6)"},
		{ID: 2, Label: "Valor", ANSI: "\x1b[0;31;40m", CSS: "rgba(240,68,58,.6)"},
		{ID: 3, Label: "Instinct", ANSI: "\x1b[0;33;40m", CSS: "rgba(254,217,40,.6)"},
	}
}

// Lookup resolves a team id. Out-of-range ids are an input-validation error,
// not a default.
func (t TeamTable) Lookup(id int) (Team, error) {
	for _, team := range t {
		if team.ID == id {
			return team, nil
		}
	}
	return Team{}, fmt.Errorf("%w: %d", ErrUnknownTeam, id)
}

// LevelFromPrestige maps a prestige value to a gym level 1-10. Thresholds are
// inclusive lower bounds; the exact boundaries matter because they decide the
// displayed rank.
func LevelFromPrestige(prestige int64) int {
	switch {
	case prestige >= 50000:
		return 10
	case prestige >= 40000:
		return 9
	case prestige >= 30000:
		return 8
	case prestige >= 20000:
		return 7
	case prestige >= 16000:
		return 6
	case prestige >= 12000:
		return 5
	case prestige >= 8000:
		return 4
	case prestige >= 4000:
		return 3
	case prestige >= 2000:
		return 2
	default:
		return 1
	}
}

// IVPercent summarises the three individual values as a percentage of the
// maximum (45). Floating-point on purpose: integer division here truncated
// away up to 2% in an earlier incarnation of this tool.
func IVPercent(atk, def, sta int) float64 {
	return float64(atk+def+sta) * 100 / 45
}

// MemberRow is one rendered roster entry.
type MemberRow struct {
	SpeciesID    int
	Species      string
	Nickname     string
	CP           int
	HP           int
	TrainerName  string
	TrainerLevel int
	IVAttack     int
	IVDefense    int
	IVStamina    int
	IVPercent    float64
	Move1        catalog.Move
	Move2        catalog.Move
}

// GymReport is the rendered form of one gym.
type GymReport struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Team        Team
	Level       int
	Prestige    int64
	Members     []MemberRow
}

// TableRows is the cosmetic row-count attribute of the roster table. It only
// affects layout: every member is always rendered even when the roster is
// larger than this.
func (r *GymReport) TableRows() int {
	return r.Level + 1
}

// Render computes a gym report. A species id missing from the catalog or an
// out-of-range team id fails this gym only; move misses render as UNKNOWN.
func Render(id string, detail *pogo.GymDetail, cats *catalog.Catalogs, teams TeamTable) (*GymReport, error) {
	fort := detail.GymState.FortData

	var prestige int64
	if fort.GymPoints != nil {
		prestige = *fort.GymPoints
	}

	team, err := teams.Lookup(fort.OwnedByTeam)
	if err != nil {
		return nil, fmt.Errorf("gym %s: %w", id, err)
	}

	if fort.ID != "" {
		id = fort.ID
	}

	rep := &GymReport{
		ID:          id,
		Name:        detail.Name,
		Description: detail.Description,
		Team:        team,
		Level:       LevelFromPrestige(prestige),
		Prestige:    prestige,
	}
	if len(detail.URLs) > 0 {
		rep.ImageURL = detail.URLs[0]
	}

	for i, mem := range detail.GymState.Memberships {
		poke := mem.PokemonData

		species, err := cats.SpeciesName(poke.PokemonID)
		if err != nil {
			return nil, fmt.Errorf("gym %s member %d: %w", id, i+1, err)
		}

		nickname := poke.Nickname
		if nickname == "" {
			nickname = species
		}

		rep.Members = append(rep.Members, MemberRow{
			SpeciesID:    poke.PokemonID,
			Species:      species,
			Nickname:     nickname,
			CP:           poke.CP,
			HP:           poke.Stamina / 2,
			TrainerName:  mem.TrainerPublicProfile.Name,
			TrainerLevel: mem.TrainerPublicProfile.Level,
			IVAttack:     poke.IndividualAttack,
			IVDefense:    poke.IndividualDefense,
			IVStamina:    poke.IndividualStamina,
			IVPercent:    IVPercent(poke.IndividualAttack, poke.IndividualDefense, poke.IndividualStamina),
			Move1:        cats.Move(poke.Move1),
			Move2:        cats.Move(poke.Move2),
		})
	}

	return rep, nil
}

// Text renders the terminal summary block.
func (r *GymReport) Text() string {
	var b strings.Builder

	desc := r.Description
	if desc == "" {
		desc = "-"
	}
	img := r.ImageURL
	if img == "" {
		img = "-"
	}

	fmt.Fprintf(&b, "Gym is: %s - %s with picture from %s\n", r.Name, desc, img)
	fmt.Fprintf(&b, "It's owned by %s%s%s and has prestige %d (Level %d) [ID: %s]\n",
		r.Team.ANSI, r.Team.Label, ansiReset, r.Prestige, r.Level, r.ID)

	for i, m := range r.Members {
		fmt.Fprintf(&b, "Pokemon %d:\n", i+1)
		fmt.Fprintf(&b, "%s (%dCP) %s owned by %s (L%d)\n",
			m.Species, m.CP, m.Nickname, m.TrainerName, m.TrainerLevel)
		fmt.Fprintf(&b, "HP: %d IVs %.2f%%: %dAtk %dDef %dSta\n",
			m.HP, m.IVPercent, m.IVAttack, m.IVDefense, m.IVStamina)
		fmt.Fprintf(&b, "Moves: %s (%s), %s (%s)\n",
			m.Move1.Name, m.Move1.Type, m.Move2.Name, m.Move2.Type)
	}

	return b.String()
}
