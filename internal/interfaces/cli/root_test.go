package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/pkg/errors"
)

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "chemidr", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"resolve", "index", "inchikey", "mesh", "migrate", "serve", "worker", "submit"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"config", "log-level", "output", "verbose", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONGER"}, [][]string{{"xyz", "1"}, {"q"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A    LONGER", lines[0])
	assert.Equal(t, "---  ------", lines[1])
	assert.Equal(t, "xyz  1", lines[2])
	assert.Equal(t, "q    ", lines[3])

	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintError_IncludesCode(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, errors.InvalidParam("bad cid"))
	assert.Contains(t, buf.String(), string(errors.CodeInvalidParam))

	buf.Reset()
	PrintError(cmd, fmt.Errorf("plain"))
	assert.Equal(t, "Error: plain\n", buf.String())
}

// ─────────────────────────────────────────────────────────────────────────────
// Command execution against local fixtures
// ─────────────────────────────────────────────────────────────────────────────

type fixture struct {
	configPath string
	dataDir    string
	cacheDir   string
	workDir    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{dataDir: t.TempDir(), cacheDir: t.TempDir(), workDir: t.TempDir()}

	tables := map[string]string{
		config.DefaultCompoundsFile: "id,public_id,name\n1,FDB000001,Garlic Oil\n2,FDB000002,Allicin\n",
		config.DefaultSynonymsFile:  "id,synonym,source_id,source_type\n10,diallyl thiosulfinate,2,Compound\n",
		config.DefaultContentsFile:  "id,source_id,orig_source_name\n1,21,Alliin\n",
		config.DefaultNutrientsFile: "nut_desc,chem_id\nSelenium,32\n",
	}
	for name, body := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, name), []byte(body), 0o644))
	}

	yaml := fmt.Sprintf("synonyms:\n  data_dir: %s\n  cache_dir: %s\nmetrics:\n  enabled: false\nlog:\n  level: error\n",
		f.dataDir, f.cacheDir)
	f.configPath = filepath.Join(f.workDir, "chemidr.yaml")
	require.NoError(t, os.WriteFile(f.configPath, []byte(yaml), 0o644))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", f.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveCmd_LocalNamesTable(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "resolve", "--remote=false", "Garlic Oil", "unobtainium")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "COMPOSITE_ID")
	assert.Contains(t, lines[2], "Garlic Oil")
	assert.Contains(t, lines[2], fmt.Sprint(1+config.DefaultMaxPubChemIndex))
	assert.Equal(t, "unobtainium", strings.TrimSpace(lines[3]))
}

func TestResolveCmd_CSVRoundTrip(t *testing.T) {
	f := newFixture(t)
	in := filepath.Join(f.workDir, "chems.csv")
	outPath := filepath.Join(f.workDir, "labeled.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,chemical\n7,Allicin\n8,\n9,Diallyl Thiosulfinate\n"), 0o644))

	stdout, err := f.run(t, "resolve", "--remote=false", "--input", in, "--column", "chemical", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK: wrote")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	composite := fmt.Sprint(2 + config.DefaultMaxPubChemIndex)
	assert.Equal(t,
		"id,chemical,pubchem_id,pubchem_name,foodb_id,inchikey,composite_id\n"+
			"7,Allicin,,,2,,"+composite+"\n"+
			"8,,,,,,\n"+
			"9,Diallyl Thiosulfinate,,,2,,"+composite+"\n",
		string(data))
}

func TestResolveCmd_HeaderOnlyInputWritesEmptyTable(t *testing.T) {
	f := newFixture(t)
	in := filepath.Join(f.workDir, "empty.csv")
	outPath := filepath.Join(f.workDir, "labeled.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,chemical\n"), 0o644))

	stdout, err := f.run(t, "resolve", "--remote=false", "--input", in, "--column", "chemical", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK: wrote")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "id,chemical,pubchem_id,pubchem_name,foodb_id,inchikey,composite_id\n", string(data))
}

func TestResolveCmd_RequiresInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "resolve")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = f.run(t, "resolve", "--input", "x.csv", "caffeine")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestResolveCmd_MissingColumn(t *testing.T) {
	f := newFixture(t)
	in := filepath.Join(f.workDir, "chems.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,compound\n1,x\n"), 0o644))

	_, err := f.run(t, "resolve", "--remote=false", "--input", in)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestIndexCmd_BuildAndLookup(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "index", "build")
	require.NoError(t, err)
	assert.Contains(t, out, "fdb_compounds")
	assert.Contains(t, out, "index persisted to file store")
	assert.FileExists(t, filepath.Join(f.cacheDir, "fdb_synonyms.json"))

	out, err = f.run(t, "-o", "json", "index", "lookup", "alliin", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, `"table": "fdb_source_strings"`)
	assert.Contains(t, out, `"found": false`)
}

func TestInChIKeyCmd_RejectsBadCID(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "inchikey", "2519", "abc")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestCommandsRequireBackends(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "migrate", "up")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = f.run(t, "worker")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = f.run(t, "submit", "caffeine")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

//Personal.AI order the ending
