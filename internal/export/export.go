// Package export projects entry and collection data into shareable
// files: a spreadsheet workbook or a paginated table document. It is a
// read-only formatting layer — no state, no network; dangling
// collection references are filtered out like everywhere else.
package export

import (
	"fmt"
	"time"

	"github.com/minbarcms/minbar/internal/models"
)

// Format selects the output file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Scope selects which slice of the data is exported.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeHadith      Scope = "hadith"
	ScopeAyat        Scope = "ayat"
	ScopeCollections Scope = "collections"
)

// Data carries the inputs of an export: the cache's entry list and the
// local collections.
type Data struct {
	Entries     []models.Entry
	Collections []models.Collection
}

// table is one titled grid of rows, the common shape both writers
// consume. A workbook renders one sheet per table; a document renders
// one section per table.
type table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Write renders the requested scope in the requested format into dir
// and returns the written file's path.
func Write(dir string, f Format, s Scope, data Data) (string, error) {
	tables, err := build(s, data)
	if err != nil {
		return "", err
	}

	stamp := time.Now().Format("2006-01-02")
	switch f {
	case FormatXLSX:
		return writeWorkbook(dir, fmt.Sprintf("minbar_export_%s_%s.xlsx", s, stamp), tables)
	case FormatPDF:
		return writeDocument(dir, fmt.Sprintf("minbar_export_%s_%s.pdf", s, stamp), tables)
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}
}

func build(s Scope, data Data) ([]table, error) {
	switch s {
	case ScopeAll:
		return []table{entriesTable("All Content", data.Entries, true)}, nil
	case ScopeHadith:
		return []table{entriesTable("All Hadith", filterKind(data.Entries, models.KindHadith), false)}, nil
	case ScopeAyat:
		return []table{entriesTable("All Ayat", filterKind(data.Entries, models.KindAyat), false)}, nil
	case ScopeCollections:
		return collectionTables(data), nil
	default:
		return nil, fmt.Errorf("unknown export scope %q", s)
	}
}

func filterKind(entries []models.Entry, k models.Kind) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func entriesTable(title string, entries []models.Entry, withKind bool) table {
	header := []string{"ID", "Type", "Arabic", "Urdu", "Reference", "Created At"}
	if !withKind {
		header = []string{"ID", "Arabic", "Urdu", "Reference", "Created At"}
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		created := "N/A"
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Format("Jan 2, 2006 3:04 PM")
		}
		if withKind {
			rows = append(rows, []string{e.ID, string(e.Kind), e.ArabicText, e.UrduTranslation, e.Reference(), created})
		} else {
			rows = append(rows, []string{e.ID, e.ArabicText, e.UrduTranslation, e.Reference(), created})
		}
	}
	return table{Title: title, Header: header, Rows: rows}
}

// collectionTables renders one table per collection, resolving entry
// references against the export data and skipping dangling ids.
func collectionTables(data Data) []table {
	byID := make(map[string]models.Entry, len(data.Entries))
	for _, e := range data.Entries {
		byID[e.ID] = e
	}

	tables := make([]table, 0, len(data.Collections))
	for _, c := range data.Collections {
		rows := make([][]string, 0, len(c.EntryIDs))
		for _, id := range c.EntryIDs {
			e, ok := byID[id]
			if !ok {
				continue
			}
			rows = append(rows, []string{e.ID, string(e.Kind), e.ArabicText, e.UrduTranslation, e.Reference()})
		}
		tables = append(tables, table{
			Title:  c.Name,
			Header: []string{"ID", "Type", "Arabic", "Urdu", "Reference"},
			Rows:   rows,
		})
	}
	return tables
}
