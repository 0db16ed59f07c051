package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/application/resolver"
	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/pkg/errors"
)

var (
	inchikeyPrefixOnly bool
	inchikeyMode       string
)

// NewInChIKeyCmd creates the inchikey command.
func NewInChIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inchikey <cid>...",
		Short: "Fetch InChIKeys for PubChem CIDs",
		Long: "Fetch InChIKeys in chunks of pubchem.batch_size CIDs. In dict mode CIDs\n" +
			"without a key are omitted; in list mode they keep an empty slot so the\n" +
			"output lines up with the input.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInChIKey(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&inchikeyPrefixOnly, "prefix", false, "keep only the first block of each key")
	cmd.Flags().StringVar(&inchikeyMode, "mode", resolver.ModeDict, "result shape: dict|list")
	return cmd
}

// NewMeSHCmd creates the mesh command.
func NewMeSHCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mesh <descriptor-id>...",
		Short: "Cross-reference MeSH descriptors to PubChem substance and compound ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeSH(cmd, args)
		},
	}
}

func parseCIDs(args []string) ([]int64, error) {
	cids := make([]int64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil || v <= 0 {
			return nil, errors.InvalidParam("CIDs must be positive integers").WithDetail(a)
		}
		cids[i] = v
	}
	return cids, nil
}

type inchikeyRows struct {
	cids   []int64
	result *resolver.InChIKeyResult
}

func (r inchikeyRows) TableHeaders() []string { return []string{"CID", "INCHIKEY"} }

func (r inchikeyRows) TableRows() [][]string {
	if r.result.Mode == resolver.ModeList {
		rows := make([][]string, len(r.cids))
		for i, cid := range r.cids {
			key := ""
			if i < len(r.result.Ordered) {
				key = r.result.Ordered[i].OrElse("")
			}
			rows[i] = []string{strconv.FormatInt(cid, 10), key}
		}
		return rows
	}
	cids := make([]int64, 0, len(r.result.ByCID))
	for cid := range r.result.ByCID {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	rows := make([][]string, len(cids))
	for i, cid := range cids {
		rows[i] = []string{strconv.FormatInt(cid, 10), r.result.ByCID[cid]}
	}
	return rows
}

func runInChIKey(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cids, err := parseCIDs(args)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := cliCtx.App(ctx, app.Options{SkipIndex: true, SkipDatabase: true})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Resolver.InChIKeys(ctx, &resolver.InChIKeyInput{
		CIDs:       cids,
		PrefixOnly: inchikeyPrefixOnly,
		Mode:       inchikeyMode,
	})
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, res)
	}
	return PrintResult(cmd, inchikeyRows{cids: cids, result: res})
}

type meshRows []chemical.MeSHRecord

func (r meshRows) TableHeaders() []string { return []string{"MESH", "SID", "CID"} }

func (r meshRows) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, m := range r {
		rows[i] = []string{m.MeSH, intCell(m.SID), intCell(m.CID)}
	}
	return rows
}

func runMeSH(cmd *cobra.Command, ids []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := cliCtx.App(ctx, app.Options{SkipIndex: true, SkipDatabase: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := make(meshRows, 0, len(ids))
	for _, id := range ids {
		rec, err := a.Resolver.CrossReferenceMeSH(ctx, id)
		if err != nil {
			return err
		}
		out = append(out, rec)
	}
	return PrintResult(cmd, out)
}

//Personal.AI order the ending
