package synonym

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/pkg/errors"
)

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"compounds.csv": {Data: []byte("id,public_id,name\n" +
			"1,FDB000001,Garlic Oil\n" +
			"2,FDB000002,Caf\xe9ine\n" +
			"3,FDB000003,  Allicin \n")},
		"compound_synonymssql.csv": {Data: []byte("id,synonym,source_id,source_type\n" +
			"10,garlic oil,99,Compound\n" +
			"11,Diallyl thiosulfinate,3,Compound\n" +
			"12,ajoene,7,Compound\n" +
			"13,ajoene,8,Compound\n" +
			"14,,9,Compound\n")},
		"contentssql.csv": {Data: []byte("id,source_id,orig_source_name\n" +
			"1,21,Alliin\n" +
			"2,21,Alliin\n" +
			"3,22,ajoene\n")},
		"usda_raw_garlic.csv": {Data: []byte("nut_desc,chem_id\n" +
			"Vitamin C\xae,31.0\n" +
			"Selenium,\n" +
			"Fibre,not-an-id\n" +
			"Alliin,32\n")},
	}
}

func buildFixture(t *testing.T) *Index {
	t.Helper()
	ix, err := Build(context.Background(), fixtureFS(), DefaultSources(config.SynonymConfig{}), nil)
	require.NoError(t, err)
	return ix
}

func TestBuild_PriorityAcrossTables(t *testing.T) {
	ix := buildFixture(t)

	assert.Equal(t, []string{TableCompounds, TableSynonyms, TableSourceStrings, TableNutrients}, ix.Names())

	hit, ok := ix.Find("Garlic Oil")
	require.True(t, ok)
	assert.Equal(t, Hit{ID: 1, Source: TableCompounds}, hit)

	hit, ok = ix.Find("alliin")
	require.True(t, ok)
	assert.Equal(t, Hit{ID: 21, Source: TableSourceStrings}, hit)

	hit, ok = ix.Find("diallyl thiosulfinate")
	require.True(t, ok)
	assert.Equal(t, Hit{ID: 3, Source: TableSynonyms}, hit)
}

func TestBuild_LastWriteWinsWithinTable(t *testing.T) {
	ix := buildFixture(t)
	assert.Equal(t, chemical.Some[int64](8), ix.Lookup("AJOENE"))
	assert.Equal(t, int64(8), ix.Table(TableSynonyms)["ajoene"])
	assert.Equal(t, int64(22), ix.Table(TableSourceStrings)["ajoene"])
}

func TestBuild_Latin1AndNormalization(t *testing.T) {
	ix := buildFixture(t)
	assert.Equal(t, chemical.Some[int64](2), ix.Lookup("  CAFÉINE "))
	assert.Equal(t, chemical.Some[int64](3), ix.Lookup("allicin"))
	assert.Equal(t, chemical.Some[int64](31), ix.Lookup("vitamin c®"))
}

func TestBuild_SkipsUnusableRows(t *testing.T) {
	ix := buildFixture(t)
	nutrients := ix.Table(TableNutrients)
	assert.Len(t, nutrients, 2)
	assert.False(t, ix.Lookup("selenium").Present())
	assert.False(t, ix.Lookup("fibre").Present())
	_, blank := ix.Table(TableSynonyms)[""]
	assert.False(t, blank)
}

func TestLookup_Absent(t *testing.T) {
	ix := buildFixture(t)
	assert.False(t, ix.Lookup("unobtainium").Present())
	assert.False(t, ix.Lookup("   ").Present())
	assert.False(t, NewIndex().Lookup("garlic oil").Present())
}

func TestBuild_MissingFile(t *testing.T) {
	fsys := fixtureFS()
	delete(fsys, "contentssql.csv")

	_, err := Build(context.Background(), fsys, DefaultSources(config.SynonymConfig{}), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSynonymSourceMissing))
}

func TestBuild_MissingColumn(t *testing.T) {
	fsys := fstest.MapFS{"c.csv": {Data: []byte("id,title\n1,x\n")}}
	_, err := Build(context.Background(), fsys, []Source{{Name: "c", File: "c.csv", KeyColumn: "name", IDColumn: "id"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSynonymSourceInvalid))
}

func TestBuild_HeaderWithBOM(t *testing.T) {
	fsys := fstest.MapFS{"c.csv": {Data: []byte("\ufeffid,name\n4,Quercetin\n")}}
	ix, err := Build(context.Background(), fsys, []Source{{Name: "c", File: "c.csv", KeyColumn: "name", IDColumn: "id"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, chemical.Some[int64](4), ix.Lookup("quercetin"))
}

func TestParseTable_SkipsInvalidUTF8Keys(t *testing.T) {
	src := Source{Name: "c", File: "c.csv", KeyColumn: "name", IDColumn: "id"}
	data := "id,name\n41,caf\xe9ine\n42,caf\xe8ine\n43,Theobromine\n"

	table, stats, err := parseTable(strings.NewReader(data), src)
	require.NoError(t, err)
	assert.Equal(t, readStats{Rows: 3, Skipped: 2, BadKeys: 2}, stats)
	assert.Equal(t, Table{"theobromine": 43}, table)
	_, collapsed := table["caf\ufffdine"]
	assert.False(t, collapsed)
}

func TestBuild_Latin1SourceKeepsHighBytes(t *testing.T) {
	fsys := fstest.MapFS{"c.csv": {Data: []byte("id,name\n41,caf\xe9ine\n42,caf\xe8ine\n")}}
	ix, err := Build(context.Background(), fsys,
		[]Source{{Name: "c", File: "c.csv", KeyColumn: "name", IDColumn: "id", Latin1: true}}, nil)
	require.NoError(t, err)
	assert.Equal(t, chemical.Some[int64](41), ix.Lookup("caféine"))
	assert.Equal(t, chemical.Some[int64](42), ix.Lookup("cafèine"))
}

func TestBuild_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, fixtureFS(), DefaultSources(config.SynonymConfig{}), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultSources_Overrides(t *testing.T) {
	srcs := DefaultSources(config.SynonymConfig{NutrientsFile: "usda/onion.csv"})
	require.Len(t, srcs, 4)
	assert.Equal(t, "compounds.csv", srcs[0].File)
	assert.True(t, srcs[0].Latin1)
	assert.Equal(t, "usda/onion.csv", srcs[3].File)
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────────────────

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	built := buildFixture(t)
	store := NewFileStore(t.TempDir())

	require.NoError(t, Persist(ctx, store, built))
	reloaded, err := Restore(ctx, store, built.Names())
	require.NoError(t, err)

	assert.True(t, built.Equal(reloaded))
	assert.Equal(t, built.Lookup("ajoene"), reloaded.Lookup("ajoene"))
}

func TestEncode_Deterministic(t *testing.T) {
	a := Table{"b": 2, "a": 1, "c": 3}
	b := Table{"c": 3, "a": 1, "b": 2}

	ea, err := Encode(a)
	require.NoError(t, err)
	eb, err := Encode(b)
	require.NoError(t, err)
	assert.Equal(t, ea, eb)
	assert.JSONEq(t, `{"a":1,"b":2,"c":3}`, string(ea))

	back, err := Decode(ea)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
	assert.Equal(t, []string{"a", "b", "c"}, back.Keys())
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte(`{"a":"x"}`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSynonymCacheCorrupt))
}

func TestFileStore_Missing(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).Load(context.Background(), TableSynonyms)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

type sizeRecorder map[string]int

func (s sizeRecorder) SetSynonymEntries(table string, n int) { s[table] = n }

func TestOpen_BuildThenLoadCache(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	sources := DefaultSources(config.SynonymConfig{})
	sizes := sizeRecorder{}

	built, err := Open(ctx, OpenOptions{Data: fixtureFS(), Sources: sources, Store: store, Metrics: sizes})
	require.NoError(t, err)
	assert.Equal(t, 2, sizes[TableNutrients])

	// No bulk files available: the cache alone must suffice.
	cached, err := Open(ctx, OpenOptions{Data: fstest.MapFS{}, Sources: sources, Store: store, LoadCache: true})
	require.NoError(t, err)
	assert.True(t, built.Equal(cached))
}

func TestOpen_LoadCacheWithoutCache(t *testing.T) {
	_, err := Open(context.Background(), OpenOptions{
		Sources:   DefaultSources(config.SynonymConfig{}),
		Store:     NewFileStore(t.TempDir()),
		LoadCache: true,
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSynonymCacheMissing))
}

func TestIndex_Len(t *testing.T) {
	ix := NewIndex().Add("a", Table{"x": 1, "y": 2}).Add("b", Table{"y": 3, "z": 4})
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, chemical.Some[int64](2), ix.Lookup("y"))
}

//Personal.AI order the ending
