package importer

// SampleJSON returns a minimal example file in the structured-record
// format, for users building their first import.
func SampleJSON() []byte {
	return []byte(`[
  {
    "type": "hadith",
    "arabic_text": "...",
    "urdu_translation": "...",
    "reference_full": "Sahih Bukhari 1:1"
  },
  {
    "type": "ayat",
    "arabic_text": "...",
    "urdu_translation": "...",
    "quran_reference": "2:255"
  }
]
`)
}

// SampleCSV returns a minimal example file in the delimited-text
// format, header row first.
func SampleCSV() []byte {
	return []byte("type,arabic_text,urdu_translation,reference_full,quran_reference\n" +
		"hadith,\"...\",\"...\",\"Sahih Bukhari 1:1\",\n" +
		"ayat,\"...\",\"...\",,\"2:255\"\n")
}
