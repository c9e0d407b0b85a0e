package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tyagiprnv/Job-Tracker/internal/database/models"
)

// SQLiteStore is a RecordStore over a local SQLite table mirroring the
// 11-column sheet schema. Rows carry explicit row numbers starting at
// FirstDataRow; deleting a row shifts the following rows up, matching
// spreadsheet semantics.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore creates a SQLiteStore on an initialized database.
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ReadAll returns all data rows ordered by row number.
func (s *SQLiteStore) ReadAll() ([][]string, error) {
	var rows []models.ApplicationRow
	if err := s.db.Order("row_num").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	out := make([][]string, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToCells())
	}
	return out, nil
}

// Append adds one row after the current last row.
func (s *SQLiteStore) Append(row []string) error {
	return s.AppendMany([][]string{row})
}

// AppendMany adds rows after the current last row, preserving order.
func (s *SQLiteStore) AppendMany(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		next, err := nextRowNum(tx)
		if err != nil {
			return err
		}

		for _, cells := range rows {
			record := models.ApplicationRow{RowNum: next}
			record.SetCells(cells)
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("append row %d: %w", next, err)
			}
			next++
		}
		return nil
	})
}

// Update replaces the row at rowNumber.
func (s *SQLiteStore) Update(rowNumber int, row []string) error {
	var record models.ApplicationRow
	if err := s.db.Where("row_num = ?", rowNumber).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRowNotFound
		}
		return fmt.Errorf("update row %d: %w", rowNumber, err)
	}

	record.SetCells(row)
	return s.db.Save(&record).Error
}

// Delete removes the row at rowNumber and shifts following rows up.
func (s *SQLiteStore) Delete(rowNumber int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("row_num = ?", rowNumber).Delete(&models.ApplicationRow{})
		if result.Error != nil {
			return fmt.Errorf("delete row %d: %w", rowNumber, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrRowNotFound
		}

		return tx.Model(&models.ApplicationRow{}).
			Where("row_num > ?", rowNumber).
			UpdateColumn("row_num", gorm.Expr("row_num - 1")).Error
	})
}

// Find returns the row number of the first row whose column equals value.
func (s *SQLiteStore) Find(column int, value string) (int, error) {
	var rows []models.ApplicationRow
	if err := s.db.Order("row_num").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("find: %w", err)
	}

	for i := range rows {
		if rows[i].Cell(column) == value {
			return rows[i].RowNum, nil
		}
	}
	return 0, ErrRowNotFound
}

func nextRowNum(tx *gorm.DB) (int, error) {
	var max int
	err := tx.Model(&models.ApplicationRow{}).
		Select("COALESCE(MAX(row_num), ?)", FirstDataRow-1).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
