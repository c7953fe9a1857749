package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minbarcms/minbar/internal/export"
)

// Import reads a JSON or CSV file, shows the validation outcome per
// record, and on confirmation inserts the valid subset as one batch.
// Records failing validation stay visible for review but are never
// imported.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter file path (.json or .csv)", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	cands, err := a.importer.Parse(filepath.Base(path), data)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	valid := 0
	for i, c := range cands {
		if c.Valid {
			valid++
			continue
		}
		printlnFn(fmt.Sprintf("Row %d skipped: %s", i+1, strings.Join(c.Errors, "; ")))
	}
	printlnFn(fmt.Sprintf("%d of %d records are valid", valid, len(cands)))

	if valid == 0 {
		printlnFn("There are no valid entries to import.")
		return nil
	}

	confirm, err := getSimpleText(a.reader, fmt.Sprintf("Import %d entries? (y/n)", valid), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		printlnFn("Cancelled")
		return nil
	}

	res := a.importer.Confirm(ctx, cands, a.cache)
	if !res.OK {
		printlnFn(res.Message)
		return fmt.Errorf("import: %s", res.Message)
	}
	return nil
}

// Export writes entries and collections to a file in the current
// directory.
//
// Usage: export [xlsx|pdf] [all|hadith|ayat|collections]
//
// Defaults are xlsx and all. The collections scope renders one table
// per collection with dangling entry references filtered out.
func (a *App) Export(ctx context.Context, args []string) error {
	format := export.FormatXLSX
	scope := export.ScopeAll

	if len(args) > 0 {
		switch export.Format(args[0]) {
		case export.FormatXLSX, export.FormatPDF:
			format = export.Format(args[0])
			args = args[1:]
		}
	}
	if len(args) > 0 {
		switch export.Scope(args[0]) {
		case export.ScopeAll, export.ScopeHadith, export.ScopeAyat, export.ScopeCollections:
			scope = export.Scope(args[0])
		default:
			printlnFn("Unknown export scope:", args[0])
			return fmt.Errorf("unknown export scope: %s", args[0])
		}
	}

	cols, err := a.collections.List()
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	path, err := export.Write(".", format, scope, export.Data{
		Entries:     a.cache.Entries(),
		Collections: cols,
	})
	if err != nil {
		printlnFn("Export error:", err.Error())
		return err
	}

	printlnFn("Exported to", path)
	return nil
}
