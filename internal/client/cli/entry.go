package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minbarcms/minbar/internal/models"
	"github.com/minbarcms/minbar/internal/query"
)

const listPageSize = 10

// List prints one page of the cached entry list, newest first.
//
// Usage: list [all|hadith|ayat] [page] [query terms...]
//
// The kind and page arguments are optional; any remaining arguments are
// joined into a free-text query matched against every field of each
// entry. Filtering and pagination run purely on the in-memory cache.
func (a *App) List(ctx context.Context, args []string) error {
	params := query.Params{Kind: query.KindAll, Page: 1, PageSize: listPageSize}

	rest := args
	if len(rest) > 0 {
		switch rest[0] {
		case query.KindAll, string(models.KindHadith), string(models.KindAyat):
			params.Kind = rest[0]
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			params.Page = n
			rest = rest[1:]
		}
	}
	params.Query = strings.Join(rest, " ")

	if a.cache.Loading() {
		printlnFn("Loading...")
		return nil
	}

	page := query.Run(a.cache.Entries(), params)
	if page.TotalItems == 0 {
		printlnFn("No entries found.")
		return nil
	}

	for _, e := range page.Items {
		printlnFn(formatEntryLine(e))
	}
	printlnFn(fmt.Sprintf("Page %d of %d (%d entries)", page.Page, page.TotalPages, page.TotalItems))
	return nil
}

func formatEntryLine(e models.Entry) string {
	ref := e.Reference()
	if ref == "" {
		ref = "-"
	}
	return fmt.Sprintf("%s  [%s]  %s  %s", e.ID, e.Kind, ref, clipLine(e.UrduTranslation, 60))
}

func clipLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// Show fetches and displays a single entry by ID from the in-memory
// cache. Absent ids are reported, not treated as errors.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to show", os.Stdout)
	if err != nil {
		return err
	}

	e, ok := a.cache.LookupByID(id)
	if !ok {
		printlnFn("Entry not found:", id)
		return nil
	}

	printlnFn("Type:", string(e.Kind))
	printlnFn("Arabic:", e.ArabicText)
	printlnFn("Urdu:", e.UrduTranslation)
	switch e.Kind {
	case models.KindHadith:
		if e.Hadith != nil {
			printlnFn("Reference:", e.Hadith.FullReference)
			if e.Hadith.InBookReference != "" {
				printlnFn("In-book reference:", e.Hadith.InBookReference)
			}
			if e.Hadith.HadithNumber != "" {
				printlnFn("Hadith number:", e.Hadith.HadithNumber)
			}
		}
	case models.KindAyat:
		if e.Ayat != nil {
			printlnFn("Reference:", e.Ayat.QuranReference)
			if e.Ayat.SurahName != "" {
				printlnFn("Surah:", e.Ayat.SurahName)
			}
			if e.Ayat.AyatNumber != "" {
				printlnFn("Ayat number:", e.Ayat.AyatNumber)
			}
		}
	}
	if e.SourceLink != "" {
		printlnFn("Source:", e.SourceLink)
	}
	if e.Note != "" {
		printlnFn("Note:", e.Note)
	}
	if e.CreatorName != "" {
		printlnFn("Added by:", e.CreatorName)
	}
	return nil
}

// Add collects a new entry interactively and inserts it through the
// content cache. Per-kind reference fields are prompted only for the
// chosen kind.
func (a *App) Add(ctx context.Context) error {
	rawKind, err := getSimpleText(a.reader, "Enter type (hadith or ayat)", os.Stdout)
	if err != nil {
		return err
	}
	kind, err := models.ParseKind(rawKind)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	arabic, err := GetMultiline(a.reader, "Enter Arabic text", os.Stdout)
	if err != nil {
		return err
	}
	urdu, err := GetMultiline(a.reader, "Enter Urdu translation", os.Stdout)
	if err != nil {
		return err
	}

	e := models.Entry{Kind: kind, ArabicText: arabic, UrduTranslation: urdu}

	switch kind {
	case models.KindHadith:
		ref := &models.HadithRef{}
		if ref.FullReference, err = getSimpleText(a.reader, "Enter full reference", os.Stdout); err != nil {
			return err
		}
		if ref.InBookReference, err = getSimpleText(a.reader, "Enter in-book reference (optional)", os.Stdout); err != nil {
			return err
		}
		if ref.HadithNumber, err = getSimpleText(a.reader, "Enter hadith number (optional)", os.Stdout); err != nil {
			return err
		}
		e.Hadith = ref
	case models.KindAyat:
		ref := &models.AyatRef{}
		if ref.QuranReference, err = getSimpleText(a.reader, "Enter quran reference", os.Stdout); err != nil {
			return err
		}
		if ref.SurahName, err = getSimpleText(a.reader, "Enter surah name (optional)", os.Stdout); err != nil {
			return err
		}
		if ref.AyatNumber, err = getSimpleText(a.reader, "Enter ayat number (optional)", os.Stdout); err != nil {
			return err
		}
		e.Ayat = ref
	}

	if e.SourceLink, err = getSimpleText(a.reader, "Enter source link (optional)", os.Stdout); err != nil {
		return err
	}
	if e.Note, err = getSimpleText(a.reader, "Enter note (optional)", os.Stdout); err != nil {
		return err
	}

	if err := e.Validate(); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	res := a.cache.Create(ctx, e)
	if !res.OK {
		return fmt.Errorf("add entry: %s", res.Message)
	}
	return nil
}

// Edit prompts for an entry id, then for replacement values field by
// field. An empty answer keeps the current value. The entry's kind is
// fixed at creation and is not offered for editing.
func (a *App) Edit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to edit", os.Stdout)
	if err != nil {
		return err
	}

	e, ok := a.cache.LookupByID(id)
	if !ok {
		printlnFn("Entry not found:", id)
		return nil
	}

	patch := models.Patch{}

	prompt := func(label, field, current string) error {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, clipLine(current, 40)), os.Stdout)
		if err != nil {
			return err
		}
		if v != "" {
			patch[field] = v
		}
		return nil
	}

	if err := prompt("Arabic text", "arabic_text", e.ArabicText); err != nil {
		return err
	}
	if err := prompt("Urdu translation", "urdu_translation", e.UrduTranslation); err != nil {
		return err
	}
	switch e.Kind {
	case models.KindHadith:
		ref := e.Hadith
		if ref == nil {
			ref = &models.HadithRef{}
		}
		if err := prompt("Full reference", "reference_full", ref.FullReference); err != nil {
			return err
		}
		if err := prompt("In-book reference", "in_book_reference", ref.InBookReference); err != nil {
			return err
		}
		if err := prompt("Hadith number", "hadith_number", ref.HadithNumber); err != nil {
			return err
		}
	case models.KindAyat:
		ref := e.Ayat
		if ref == nil {
			ref = &models.AyatRef{}
		}
		if err := prompt("Quran reference", "quran_reference", ref.QuranReference); err != nil {
			return err
		}
		if err := prompt("Surah name", "surah_name", ref.SurahName); err != nil {
			return err
		}
		if err := prompt("Ayat number", "ayat_number", ref.AyatNumber); err != nil {
			return err
		}
	}
	if err := prompt("Source link", "source_link", e.SourceLink); err != nil {
		return err
	}
	if err := prompt("Note", "note", e.Note); err != nil {
		return err
	}

	if len(patch) == 0 {
		printlnFn("Nothing to update.")
		return nil
	}

	res := a.cache.Update(ctx, id, patch)
	if !res.OK {
		return fmt.Errorf("edit entry: %s", res.Message)
	}
	printlnFn("Entry updated")
	return nil
}

// Delete removes an entry by its identifier, prompting the user for the
// ID and a confirmation.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to delete", os.Stdout)
	if err != nil {
		return err
	}

	confirm, err := getSimpleText(a.reader, "Delete "+id+"? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		printlnFn("Cancelled")
		return nil
	}

	res := a.cache.Delete(ctx, id)
	if !res.OK {
		return fmt.Errorf("delete entry: %s", res.Message)
	}
	printlnFn("Entry deleted")
	return nil
}

// Refresh re-fetches the entry list from the backend.
func (a *App) Refresh(ctx context.Context) error {
	a.cache.Refresh(ctx, false)
	printlnFn(fmt.Sprintf("%d entries", len(a.cache.Entries())))
	return nil
}
