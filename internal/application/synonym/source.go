// Package synonym builds and serves the local name → FooDB id index from the
// bulk reference tables. An Index is an explicit value passed to whoever
// needs it; there is no process-wide cache.
package synonym

import (
	"github.com/turtacn/chemidr/internal/config"
)

// Source describes one bulk reference table.
type Source struct {
	// Name identifies the table in logs and in the persisted cache.
	Name string
	// File is the path of the CSV relative to the data directory.
	File string
	// KeyColumn holds the chemical name, IDColumn the FooDB id.
	KeyColumn string
	IDColumn  string
	// Latin1 marks files encoded as ISO-8859-1 rather than UTF-8.
	Latin1 bool
}

// Persisted table names.
const (
	TableCompounds     = "fdb_compounds"
	TableSynonyms      = "fdb_synonyms"
	TableSourceStrings = "fdb_source_strings"
	TableNutrients     = "usda_ids"
)

// DefaultSources returns the four FooDB/USDA tables in priority order:
// primary compound names, synonym aliases, content source strings, then the
// nutrient descriptions.
func DefaultSources(cfg config.SynonymConfig) []Source {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return []Source{
		{Name: TableCompounds, File: pick(cfg.CompoundsFile, config.DefaultCompoundsFile), KeyColumn: "name", IDColumn: "id", Latin1: true},
		{Name: TableSynonyms, File: pick(cfg.SynonymsFile, config.DefaultSynonymsFile), KeyColumn: "synonym", IDColumn: "source_id"},
		{Name: TableSourceStrings, File: pick(cfg.ContentsFile, config.DefaultContentsFile), KeyColumn: "orig_source_name", IDColumn: "source_id"},
		{Name: TableNutrients, File: pick(cfg.NutrientsFile, config.DefaultNutrientsFile), KeyColumn: "nut_desc", IDColumn: "chem_id", Latin1: true},
	}
}

//Personal.AI order the ending
