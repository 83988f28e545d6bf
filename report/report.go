// Package report формирует PDF-выписку результатов студента.
package report

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/tma-tanlov/backend/internal/domain/dto"
)

// ResultData содержит данные для формирования выписки.
type ResultData struct {
	FullName     string
	HemisID      string
	Faculty      string
	Level        string
	Applications []dto.ApplicationView
	TestResults  []dto.TestResult
}

// GeneratePDFReport генерирует PDF-выписку и сохраняет её в файл.
// Возвращает имя файла и ошибку, если она произошла.
func GeneratePDFReport(r ResultData) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")

	// Регистрируем UTF-8 шрифты, поддерживающие кириллицу и узбекские буквы.
	pdf.AddUTF8Font("DejaVu", "", "report/fonts/DejaVuSans.ttf")
	pdf.AddUTF8Font("DejaVu", "B", "report/fonts/DejaVuSans-Bold.ttf")

	pdf.SetFont("DejaVu", "", 14)
	pdf.AddPage()

	pdf.SetFont("DejaVu", "B", 16)
	pdf.MultiCell(0, 10, "Tanlov natijalari bo'yicha ma'lumotnoma", "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("DejaVu", "", 12)
	info := fmt.Sprintf("F.I.Sh.: %s\nHEMIS ID: %s\nFakultet: %s\nKurs: %s\n",
		r.FullName, r.HemisID, r.Faculty, r.Level)
	pdf.MultiCell(0, 8, info, "", "L", false)
	pdf.Ln(4)

	for _, app := range r.Applications {
		pdf.SetFont("DejaVu", "B", 12)
		pdf.MultiCell(0, 8, fmt.Sprintf("Ariza #%d (%s)", app.ApplicationID, app.Status), "", "L", false)

		pdf.SetFont("DejaVu", "", 12)
		total := 0.0
		for _, item := range app.Items {
			line := item.DirectionName + ": "
			if item.Score != nil {
				line += fmt.Sprintf("%.2f", *item.Score)
				total += *item.Score
			} else {
				line += "-"
			}
			if item.ScoreNote != "" {
				line += " (" + item.ScoreNote + ")"
			}
			pdf.MultiCell(0, 8, line, "", "L", false)
		}
		pdf.MultiCell(0, 8, fmt.Sprintf("Jami: %.2f", total), "", "L", false)
		pdf.Ln(4)
	}

	if len(r.TestResults) > 0 {
		pdf.SetFont("DejaVu", "B", 12)
		pdf.MultiCell(0, 8, "Test natijalari", "", "L", false)

		pdf.SetFont("DejaVu", "", 12)
		for _, result := range r.TestResults {
			line := fmt.Sprintf("Ball: %.2f (%d/%d), yakunlangan: %s",
				result.Score, result.CorrectAnswers, result.TotalQuestions, result.FinishedAt)
			pdf.MultiCell(0, 8, line, "", "L", false)
		}
	}

	filename := "natija_" + r.HemisID + ".pdf"
	if err := pdf.OutputFileAndClose(filename); err != nil {
		return "", err
	}
	return filename, nil
}
