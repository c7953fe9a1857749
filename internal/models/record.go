package models

import (
	"time"
)

// Record is the flat wire form of an entry: the row shape the backend
// stores and the joined read view returns, and the field layout import
// files and exports use. Reference fields of the other kind stay empty.
type Record struct {
	ID              string `json:"id,omitempty"`
	Type            string `json:"type"`
	ArabicText      string `json:"arabic_text"`
	UrduTranslation string `json:"urdu_translation"`

	ReferenceFull   string `json:"reference_full,omitempty"`
	InBookReference string `json:"in_book_reference,omitempty"`
	HadithNumber    string `json:"hadith_number,omitempty"`

	QuranReference string `json:"quran_reference,omitempty"`
	SurahName      string `json:"surah_name,omitempty"`
	AyatNumber     string `json:"ayat_number,omitempty"`

	SourceLink string `json:"source_link,omitempty"`
	Note       string `json:"note,omitempty"`

	CreatedBy   string `json:"created_by,omitempty"`
	CreatorName string `json:"creator_name,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Patch is a partial update keyed by column name, sent as-is to the
// backend. The cache strips immutable and derived columns before send.
type Patch map[string]any

// ImmutablePatchFields are the columns a Patch may never carry: the id,
// the creation timestamp, the denormalized creator display name, and the
// kind discriminant (kind is fixed at creation).
var ImmutablePatchFields = []string{"id", "created_at", "creator_name", "type"}

// Record converts the entry to its wire form.
func (e Entry) Record() Record {
	r := Record{
		ID:              e.ID,
		Type:            string(e.Kind),
		ArabicText:      e.ArabicText,
		UrduTranslation: e.UrduTranslation,
		SourceLink:      e.SourceLink,
		Note:            e.Note,
		CreatedBy:       e.CreatedBy,
		CreatorName:     e.CreatorName,
	}
	if e.Hadith != nil {
		r.ReferenceFull = e.Hadith.FullReference
		r.InBookReference = e.Hadith.InBookReference
		r.HadithNumber = e.Hadith.HadithNumber
	}
	if e.Ayat != nil {
		r.QuranReference = e.Ayat.QuranReference
		r.SurahName = e.Ayat.SurahName
		r.AyatNumber = e.Ayat.AyatNumber
	}
	if !e.CreatedAt.IsZero() {
		r.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		r.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// Entry converts the wire row back to the tagged union. An unknown kind
// yields an entry with neither variant set; callers that need strictness
// validate separately.
func (r Record) Entry() Entry {
	e := Entry{
		ID:              r.ID,
		ArabicText:      r.ArabicText,
		UrduTranslation: r.UrduTranslation,
		SourceLink:      r.SourceLink,
		Note:            r.Note,
		CreatedBy:       r.CreatedBy,
		CreatorName:     r.CreatorName,
	}
	if k, err := ParseKind(r.Type); err == nil {
		e.Kind = k
	}
	switch e.Kind {
	case KindHadith:
		e.Hadith = &HadithRef{
			FullReference:   r.ReferenceFull,
			InBookReference: r.InBookReference,
			HadithNumber:    r.HadithNumber,
		}
	case KindAyat:
		e.Ayat = &AyatRef{
			QuranReference: r.QuranReference,
			SurahName:      r.SurahName,
			AyatNumber:     r.AyatNumber,
		}
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		e.UpdatedAt = t
	}
	return e
}

// Fields returns the string form of every wire field, in declaration
// order. The free-text filter matches against all of them rather than a
// fixed subset.
func (r Record) Fields() []string {
	return []string{
		r.ID, r.Type, r.ArabicText, r.UrduTranslation,
		r.ReferenceFull, r.InBookReference, r.HadithNumber,
		r.QuranReference, r.SurahName, r.AyatNumber,
		r.SourceLink, r.Note,
		r.CreatedBy, r.CreatorName, r.CreatedAt, r.UpdatedAt,
	}
}
