package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/minbarcms/minbar/internal/models"
)

func sampleData() Data {
	created := time.Date(2026, 5, 1, 15, 4, 0, 0, time.UTC)
	return Data{
		Entries: []models.Entry{
			{ID: "h1", Kind: models.KindHadith, ArabicText: "arabic-h", UrduTranslation: "urdu-h",
				Hadith: &models.HadithRef{FullReference: "Sahih Bukhari 1:1"}, CreatedAt: created},
			{ID: "a1", Kind: models.KindAyat, ArabicText: "arabic-a", UrduTranslation: "urdu-a",
				Ayat: &models.AyatRef{QuranReference: "2:255"}},
		},
		Collections: []models.Collection{
			{ID: 1, Name: "Sahih Bukhari", EntryIDs: []string{"h1", "deleted"}},
		},
	}
}

func TestWrite_WorkbookAllScope(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, FormatXLSX, ScopeAll, sampleData())
	require.NoError(t, err)

	wantName := fmt.Sprintf("minbar_export_all_%s.xlsx", time.Now().Format("2006-01-02"))
	assert.Equal(t, wantName, filepath.Base(path))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Equal(t, []string{"All Content"}, wb.GetSheetList())

	rows, err := wb.GetRows("All Content")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Type", "Arabic", "Urdu", "Reference", "Created At"}, rows[0])
	assert.Equal(t, []string{"h1", "hadith", "arabic-h", "urdu-h", "Sahih Bukhari 1:1", "May 1, 2026 3:04 PM"}, rows[1])
	// Zero creation time renders as N/A.
	assert.Equal(t, "N/A", rows[2][5])
}

func TestWrite_KindScopesFilterAndDropTypeColumn(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, FormatXLSX, ScopeHadith, sampleData())
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("All Hadith")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Arabic", "Urdu", "Reference", "Created At"}, rows[0])
	assert.Equal(t, "h1", rows[1][0])
}

func TestWrite_CollectionsScopeSkipsDanglingRefs(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, FormatXLSX, ScopeCollections, sampleData())
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Equal(t, []string{"Sahih Bukhari"}, wb.GetSheetList())

	rows, err := wb.GetRows("Sahih Bukhari")
	require.NoError(t, err)
	// Header plus the one resolvable entry; the dangling id is skipped.
	require.Len(t, rows, 2)
	assert.Equal(t, "h1", rows[1][0])
}

func TestWrite_Document(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, FormatPDF, ScopeAll, sampleData())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	head := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
}

func TestWrite_UnknownFormatAndScope(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, Format("docx"), ScopeAll, sampleData())
	require.Error(t, err)

	_, err = Write(dir, FormatXLSX, Scope("everything"), sampleData())
	require.Error(t, err)
}

func TestSheetName_TruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("x", 40)
	got := sheetName(long)
	assert.Len(t, []rune(got), 31)

	// Rune-safe: multibyte titles are cut on rune boundaries.
	arabicTitle := strings.Repeat("ع", 40)
	got = sheetName(arabicTitle)
	assert.Len(t, []rune(got), 31)

	assert.Equal(t, "short", sheetName("short"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	clipped := clip(strings.Repeat("a", 50), 10)
	assert.Len(t, []rune(clipped), 10)
	assert.True(t, strings.HasSuffix(clipped, "…"))
}
