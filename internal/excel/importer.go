// Package excel imports marks in bulk from a spreadsheet. Expected layout:
// first sheet, one row per mark with columns group name, assessment name,
// obtained, total. Rows that fail validation are logged and skipped; the
// rest go through the same upsert path as single-mark entry.
package excel

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
)

// ImportMarks reads the sheet and upserts each valid row into the course on
// behalf of userID. Returns how many rows were imported.
func ImportMarks(ctx context.Context, store *db.Store, userID, courseID uint, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, db.ErrValidationFailed
	}
	sheetName := sheets[0]
	log.Println("📖 Importing marks from sheet:", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, err
	}

	imported := 0
	for rowIndex, row := range rows {
		// Header row is optional; detect it by a non-numeric total column.
		if rowIndex == 0 && isHeader(row) {
			continue
		}
		if len(row) < 4 {
			if !rowEmpty(row) {
				log.Printf("⚠️ Skipped row %d: need 4 columns, got %d", rowIndex+1, len(row))
			}
			continue
		}

		groupName := strings.TrimSpace(row[0])
		assessment := strings.TrimSpace(row[1])
		obtained, errOb := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		total, errTot := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)

		if groupName == "" || assessment == "" || errOb != nil || errTot != nil {
			log.Printf("⚠️ Skipped row %d: malformed values %v", rowIndex+1, row)
			continue
		}
		if total <= 0 || obtained < 0 {
			log.Printf("⚠️ Skipped row %d: invalid marks %g/%g", rowIndex+1, obtained, total)
			continue
		}

		groupID, err := store.GroupByName(ctx, courseID, groupName)
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("⚠️ Skipped row %d: no group %q in course %d", rowIndex+1, groupName, courseID)
			continue
		}
		if err != nil {
			return imported, err
		}

		if err := store.UpsertMark(ctx, userID, courseID, groupID, assessment, obtained, total); err != nil {
			// Ownership failures abort the whole import, bad rows do not.
			if errors.Is(err, db.ErrUnauthorized) {
				return imported, err
			}
			log.Printf("⚠️ Skipped row %d: %v", rowIndex+1, err)
			continue
		}
		imported++
	}

	log.Printf("🎉 Finished import: %d marks", imported)
	return imported, nil
}

func isHeader(row []string) bool {
	if len(row) < 4 {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	return err != nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
