package result_pdf_handler

import (
	"fmt"
	"net/http"
	"os"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
	"github.com/tma-tanlov/backend/report"
)

// ResultPDFHandler формирует PDF-выписку результатов текущего студента
type ResultPDFHandler struct {
	applicationService *applicationsService.ApplicationService
	studentService     *studentsService.StudentService
	jwtManager         *auth.Manager
}

// NewResultPDFHandler создает новый экземпляр обработчика
func NewResultPDFHandler(applicationService *applicationsService.ApplicationService, studentService *studentsService.StudentService, jwtManager *auth.Manager) *ResultPDFHandler {
	return &ResultPDFHandler{applicationService: applicationService, studentService: studentService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ResultPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	ctx := r.Context()
	summary, err := h.applicationService.ResultSummary(ctx, claims.HemisID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	student, err := h.studentService.Student(ctx, claims.StudentID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	data := report.ResultData{
		FullName:     summary.FullName,
		HemisID:      summary.HemisID,
		Applications: summary.Applications,
		TestResults:  summary.TestResults,
	}
	if student.FacultyID != nil {
		if faculty, err := h.studentService.Faculty(ctx, *student.FacultyID); err == nil && faculty != nil {
			data.Faculty = faculty.Name
		}
	}
	if student.LevelID != nil {
		if level, err := h.studentService.Level(ctx, *student.LevelID); err == nil && level != nil {
			data.Level = level.Name
		}
	}

	filename, err := report.GeneratePDFReport(data)
	if err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate report: %v", err))
		return
	}
	defer os.Remove(filename)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	http.ServeFile(w, r, filename)
}
