// Package export выгрузка рейтинга в Excel для комиссии.
package export

import (
	"fmt"

	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/xuri/excelize/v2"
)

// leaderboardHeaders заголовки колонок листа рейтинга
var leaderboardHeaders = []string{"№", "HEMIS ID", "F.I.Sh.", "Fakultet", "Kurs", "Jami ball"}

// LeaderboardWorkbook собирает книгу Excel с рейтингом студентов.
// Вызывающий отвечает за закрытие книги.
func LeaderboardWorkbook(title string, rows []dto.LeaderboardRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Sheet1"

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to set title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", style); err != nil {
		return nil, fmt.Errorf("failed to style title: %w", err)
	}

	for i, header := range leaderboardHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{row.Rank, row.HemisID, row.FullName, row.Faculty, row.Level, row.Total}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+3)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell: %w", err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "C", 24); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "D", "E", 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	return f, nil
}
