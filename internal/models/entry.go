// Package models defines the content types the CMS curates: entries
// (hadith and ayat rows synced from the backend), locally owned
// collections and notifications, and the auth session shape.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies an entry. It is fixed at creation: updates never carry
// a kind, so a row can not switch between hadith and ayat after insert.
type Kind string

const (
	KindHadith Kind = "hadith"
	KindAyat   Kind = "ayat"
)

// ParseKind normalizes a raw kind value. Matching is case-insensitive so
// imported files may carry "Hadith" or "AYAT".
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindHadith:
		return KindHadith, nil
	case KindAyat:
		return KindAyat, nil
	default:
		return "", fmt.Errorf("unknown entry kind %q", s)
	}
}

// HadithRef holds the reference fields meaningful only for hadith rows.
type HadithRef struct {
	// FullReference is required for hadith entries (book, chapter, narrator).
	FullReference   string
	InBookReference string
	HadithNumber    string
}

// AyatRef holds the reference fields meaningful only for ayat rows.
type AyatRef struct {
	// QuranReference is required for ayat entries (surah:ayat notation).
	QuranReference string
	SurahName      string
	AyatNumber     string
}

// Entry is one content row. It is a tagged union over Kind: exactly one
// of Hadith or Ayat is non-nil, selected by Kind. The backend assigns
// ID, CreatedAt and UpdatedAt on insert; CreatorName exists only on the
// joined read view and is never written back.
type Entry struct {
	ID              string
	Kind            Kind
	ArabicText      string
	UrduTranslation string

	Hadith *HadithRef
	Ayat   *AyatRef

	SourceLink string
	Note       string

	CreatedBy   string
	CreatorName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reference returns the authoritative reference for the entry's kind:
// the full hadith reference or the quran reference.
func (e Entry) Reference() string {
	switch e.Kind {
	case KindHadith:
		if e.Hadith != nil {
			return e.Hadith.FullReference
		}
	case KindAyat:
		if e.Ayat != nil {
			return e.Ayat.QuranReference
		}
	}
	return ""
}

// Validate checks the invariants a manual entry form must satisfy before
// the row is sent to the backend. Per-kind requiredness is conditional,
// so it is expressed directly rather than through struct tags.
func (e Entry) Validate() error {
	var errs []error
	if e.Kind != KindHadith && e.Kind != KindAyat {
		errs = append(errs, fmt.Errorf("invalid or missing \"type\""))
	}
	if e.ArabicText == "" {
		errs = append(errs, fmt.Errorf("missing \"arabic_text\""))
	}
	if e.UrduTranslation == "" {
		errs = append(errs, fmt.Errorf("missing \"urdu_translation\""))
	}
	switch e.Kind {
	case KindHadith:
		if e.Hadith == nil || e.Hadith.FullReference == "" {
			errs = append(errs, fmt.Errorf("missing \"reference_full\""))
		}
	case KindAyat:
		if e.Ayat == nil || e.Ayat.QuranReference == "" {
			errs = append(errs, fmt.Errorf("missing \"quran_reference\""))
		}
	}
	return errors.Join(errs...)
}
