package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/kinobot/core/logger"
)

// seedNamespace derives stable ids for seed records declared without a uuid.
var seedNamespace = uuid.MustParse("6f0b1c8e-3d1a-5c39-9a47-6b2e1f7d4c10")

// Seed is the YAML catalog file. Cross references may name the target by uuid or by name.
type Seed struct {
	Films   []Film   `yaml:"films"`
	Cinemas []Cinema `yaml:"cinemas"`
}

// ParseSeed decodes a seed document.
func ParseSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("catalog: decode seed: %w", err)
	}
	return s, nil
}

// Resolve assigns missing uuids, rewrites name references to uuids and
// mirrors film/cinema links so both sides list each other.
func (s Seed) Resolve() ([]Film, []Cinema, error) {
	films := make([]Film, len(s.Films))
	copy(films, s.Films)
	cinemas := make([]Cinema, len(s.Cinemas))
	copy(cinemas, s.Cinemas)

	filmIDs := make(map[string]string, len(films)*2)
	for i := range films {
		f := &films[i]
		if strings.TrimSpace(f.Name) == "" {
			return nil, nil, fmt.Errorf("catalog: film #%d has no name", i+1)
		}
		if f.UUID == "" {
			f.UUID = seedID("film", f.Name)
		}
		if _, dup := filmIDs[f.UUID]; dup {
			return nil, nil, fmt.Errorf("catalog: duplicate film %q", f.UUID)
		}
		filmIDs[f.UUID] = f.UUID
		filmIDs[f.Name] = f.UUID
	}
	cinemaIDs := make(map[string]string, len(cinemas)*2)
	for i := range cinemas {
		c := &cinemas[i]
		if strings.TrimSpace(c.Name) == "" {
			return nil, nil, fmt.Errorf("catalog: cinema #%d has no name", i+1)
		}
		if c.UUID == "" {
			c.UUID = seedID("cinema", c.Name)
		}
		if _, dup := cinemaIDs[c.UUID]; dup {
			return nil, nil, fmt.Errorf("catalog: duplicate cinema %q", c.UUID)
		}
		cinemaIDs[c.UUID] = c.UUID
		cinemaIDs[c.Name] = c.UUID
	}

	filmIndex := make(map[string]int, len(films))
	for i, f := range films {
		filmIndex[f.UUID] = i
	}
	cinemaIndex := make(map[string]int, len(cinemas))
	for i, c := range cinemas {
		cinemaIndex[c.UUID] = i
	}

	for i := range films {
		refs := films[i].Cinemas
		films[i].Cinemas = nil
		for _, ref := range refs {
			id, ok := cinemaIDs[ref]
			if !ok {
				return nil, nil, fmt.Errorf("catalog: film %q references unknown cinema %q", films[i].Name, ref)
			}
			films[i].Cinemas = appendUnique(films[i].Cinemas, id)
		}
	}
	for i := range cinemas {
		refs := cinemas[i].Films
		cinemas[i].Films = nil
		for _, ref := range refs {
			id, ok := filmIDs[ref]
			if !ok {
				return nil, nil, fmt.Errorf("catalog: cinema %q references unknown film %q", cinemas[i].Name, ref)
			}
			cinemas[i].Films = appendUnique(cinemas[i].Films, id)
		}
	}

	for _, f := range films {
		for _, cid := range f.Cinemas {
			c := &cinemas[cinemaIndex[cid]]
			c.Films = appendUnique(c.Films, f.UUID)
		}
	}
	for _, c := range cinemas {
		for _, fid := range c.Films {
			f := &films[filmIndex[fid]]
			f.Cinemas = appendUnique(f.Cinemas, c.UUID)
		}
	}
	return films, cinemas, nil
}

// seedID is a name-based uuid in 32-hex form. Telegram ends a command link
// at the first hyphen, so the dashed form would not survive a tap on /f<id>.
func seedID(kind, name string) string {
	return strings.ReplaceAll(uuid.NewSHA1(seedNamespace, []byte(kind+":"+name)).String(), "-", "")
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

// Seeder loads a seed file into a Writer at boot.
type Seeder struct {
	Writer Writer
	Path   string
}

// Seed reads, resolves and upserts the catalog. An empty Path is a no-op.
func (s Seeder) Seed(ctx context.Context) error {
	if s.Path == "" || s.Writer == nil {
		return nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("catalog: open seed: %w", err)
	}
	defer f.Close()

	doc, err := ParseSeed(f)
	if err != nil {
		return err
	}
	films, cinemas, err := doc.Resolve()
	if err != nil {
		return err
	}
	for _, c := range cinemas {
		if err := s.Writer.UpsertCinema(ctx, c); err != nil {
			return fmt.Errorf("catalog: upsert cinema %q: %w", c.Name, err)
		}
	}
	for _, film := range films {
		if err := s.Writer.UpsertFilm(ctx, film); err != nil {
			return fmt.Errorf("catalog: upsert film %q: %w", film.Name, err)
		}
	}
	logger.SEED.LogAttrs(ctx, slog.LevelInfo, "catalog seeded",
		slog.String("event", "catalog.seed"),
		slog.String("file", s.Path),
		slog.Int("films", len(films)),
		slog.Int("cinemas", len(cinemas)),
	)
	return nil
}
