// Package importer turns an uploaded JSON or CSV file into validated
// candidate entries. Parsing is all-or-nothing: a malformed, empty or
// unsupported file is rejected outright with no partial preview. On a
// successful parse every record is validated independently and all of
// its failures are surfaced together; the pipeline never mutates the
// cache itself — callers review the annotated candidates and hand only
// the valid subset to the cache's bulk insert.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/minbarcms/minbar/internal/cache"
	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/models"
)

// Candidate is one parsed record with its validation outcome. Invalid
// candidates stay visible for review; they are just never imported.
type Candidate struct {
	Record models.Record
	Valid  bool
	Errors []string
}

// importRow is the validation shadow of a record: only the fields the
// import contract requires.
type importRow struct {
	Type            string `json:"type" validate:"required,entrykind"`
	ArabicText      string `json:"arabic_text" validate:"required"`
	UrduTranslation string `json:"urdu_translation" validate:"required"`
}

// Pipeline parses and validates import files.
type Pipeline struct {
	v *validator.Validate
}

// New returns a Pipeline with the entry-kind rule registered.
func New() *Pipeline {
	v := validator.New()

	// Error messages name fields by their wire (JSON) names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("entrykind", func(fl validator.FieldLevel) bool {
		_, err := models.ParseKind(fl.Field().String())
		return err == nil
	})

	return &Pipeline{v: v}
}

// Parse decodes the uploaded file into annotated candidates. The format
// is chosen by file extension: .json expects an array of flat objects,
// .csv expects a header row naming the same fields. Anything else is
// common.ErrUnsupportedFormat; undecodable or empty content is a hard
// rejection.
func (p *Pipeline) Parse(filename string, data []byte) ([]Candidate, error) {
	var (
		recs []models.Record
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		recs, err = parseJSON(data)
	case ".csv":
		recs, err = parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.ErrEmptyImport
	}

	cands := make([]Candidate, 0, len(recs))
	for _, rec := range recs {
		errs := p.validate(rec)
		cands = append(cands, Candidate{
			Record: rec,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
	}
	return cands, nil
}

// validate checks one record against the import contract and returns
// every failure, not just the first.
func (p *Pipeline) validate(rec models.Record) []string {
	row := importRow{
		Type:            rec.Type,
		ArabicText:      rec.ArabicText,
		UrduTranslation: rec.UrduTranslation,
	}

	err := p.v.Struct(row)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == "type" {
			msgs = append(msgs, `invalid or missing "type"`)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("missing %q", fe.Field()))
	}
	return msgs
}

// Valid returns the subset of candidates with zero errors.
func Valid(cands []Candidate) []models.Record {
	out := make([]models.Record, 0, len(cands))
	for _, c := range cands {
		if c.Valid {
			out = append(out, c.Record)
		}
	}
	return out
}

// Confirm hands the valid subset to the cache's bulk insert. Records
// failing validation are silently excluded from the batch. Kind values
// are normalized to their canonical lowercase form on the way out.
func (p *Pipeline) Confirm(ctx context.Context, cands []Candidate, store *cache.Store) cache.Result {
	valid := Valid(cands)
	if len(valid) == 0 {
		return cache.Result{Message: "There are no valid entries to import."}
	}
	for i := range valid {
		if k, err := models.ParseKind(valid[i].Type); err == nil {
			valid[i].Type = string(k)
		}
	}
	return store.BulkCreate(ctx, valid)
}

func parseJSON(data []byte) ([]models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var recs []models.Record
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEmptyImport, err)
	}
	return recs, nil
}

func parseCSV(data []byte) ([]models.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEmptyImport, err)
	}
	if len(rows) < 2 {
		return nil, common.ErrEmptyImport
	}

	header := rows[0]
	recs := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.Record{}
		for i, col := range header {
			if i >= len(row) {
				break
			}
			setField(&rec, strings.TrimSpace(col), row[i])
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func setField(rec *models.Record, name, value string) {
	switch strings.ToLower(name) {
	case "id":
		rec.ID = value
	case "type":
		rec.Type = value
	case "arabic_text":
		rec.ArabicText = value
	case "urdu_translation":
		rec.UrduTranslation = value
	case "reference_full":
		rec.ReferenceFull = value
	case "in_book_reference":
		rec.InBookReference = value
	case "hadith_number":
		rec.HadithNumber = value
	case "quran_reference":
		rec.QuranReference = value
	case "surah_name":
		rec.SurahName = value
	case "ayat_number":
		rec.AyatNumber = value
	case "source_link":
		rec.SourceLink = value
	case "note":
		rec.Note = value
	}
}
