package db

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Word struct {
	ID        uint      `gorm:"primaryKey"`
	Category  string    `gorm:"size:64;not null;uniqueIndex:idx_word_library_category_text"`
	Text      string    `gorm:"size:120;not null;uniqueIndex:idx_word_library_category_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Word) TableName() string { return "word_library" }

type wordRecord struct {
	Category string
	Text     string
}

// LoadWordLibrary reads category,word rows from a CSV with a header line and
// upserts them into word_library. It returns how many rows it processed.
func LoadWordLibrary(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readWords(path)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, record := range records {
		entry := Word{Category: record.Category, Text: record.Text}
		if err := conn.FirstOrCreate(&entry, Word{Category: entry.Category, Text: entry.Text}).Error; err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func readWords(path string) ([]wordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []wordRecord
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		category := strings.TrimSpace(row[0])
		text := strings.TrimSpace(row[1])
		if category == "" || text == "" {
			continue
		}
		records = append(records, wordRecord{Category: category, Text: text})
	}
	return records, nil
}
