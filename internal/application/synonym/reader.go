package synonym

import (
	"encoding/csv"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/pkg/errors"
)

// readStats counts what happened while reading one table.
type readStats struct {
	Rows    int
	Skipped int
	// BadKeys counts rows whose key is not valid UTF-8. They are also
	// counted in Skipped.
	BadKeys int
}

// readSource loads one bulk table from fsys. Keys are normalized with
// chemical.LookupKey; a later row with the same key overwrites an earlier
// one. Rows with a blank name, a non-integral id or a key that is not valid
// UTF-8 are skipped.
func readSource(fsys fs.FS, src Source) (Table, readStats, error) {
	f, err := fsys.Open(src.File)
	if err != nil {
		return nil, readStats{}, errors.Wrap(err, errors.ErrCodeSynonymSourceMissing, "open reference table").
			WithDetail(src.File)
	}
	defer f.Close()

	var r io.Reader = f
	if src.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(f)
	}
	return parseTable(r, src)
}

func parseTable(r io.Reader, src Source) (Table, readStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, readStats{}, errors.Wrap(err, errors.ErrCodeSynonymSourceInvalid, "read header").WithDetail(src.File)
	}
	keyCol, idCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case src.KeyColumn:
			keyCol = i
		case src.IDColumn:
			idCol = i
		}
	}
	if keyCol < 0 || idCol < 0 {
		return nil, readStats{}, errors.Newf(errors.ErrCodeSynonymSourceInvalid,
			"%s: expected columns %q and %q", src.File, src.KeyColumn, src.IDColumn)
	}

	table := make(Table)
	var stats readStats
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, errors.Wrap(err, errors.ErrCodeSynonymSourceInvalid, "read row").WithDetail(src.File)
		}
		stats.Rows++
		if keyCol >= len(rec) || idCol >= len(rec) {
			stats.Skipped++
			continue
		}
		if !utf8.ValidString(rec[keyCol]) {
			stats.BadKeys++
			stats.Skipped++
			continue
		}
		key := chemical.LookupKey(rec[keyCol])
		id, ok := parseFooDBID(rec[idCol])
		if key == "" || !ok {
			stats.Skipped++
			continue
		}
		table[key] = id
	}
	return table, stats, nil
}

// parseFooDBID accepts "123" and the "123.0" form pandas writes for columns
// that contain blanks.
func parseFooDBID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

//Personal.AI order the ending
