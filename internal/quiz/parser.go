// Package quiz разбирает текстовый формат загрузки банка вопросов.
//
// Формат файла:
//
//	# Текст вопроса
//	+ правильный вариант
//	- неправильный вариант
//	- неправильный вариант
//
// Строка "#" начинает новый вопрос, "+" и "-" добавляют варианты.
// Пустые строки игнорируются.
package quiz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tma-tanlov/backend/internal/domain/model"
)

// optionLabels буквы вариантов в порядке появления в файле
var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// ParseError ошибка разбора с привязкой к строке файла
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse читает файл банка вопросов. Ошибки собираются по строкам, разбор
// не останавливается на первой: администратор получает полный список.
func Parse(r io.Reader) ([]model.QuestionDraft, []ParseError) {
	var (
		questions []model.QuestionDraft
		errors    []ParseError
		current   *model.QuestionDraft
		startLine int
	)

	flush := func() {
		if current == nil {
			return
		}
		if err := validate(current); err != "" {
			errors = append(errors, ParseError{Line: startLine, Message: err})
		} else {
			questions = append(questions, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#"):
			flush()
			text := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if text == "" {
				errors = append(errors, ParseError{Line: lineNo, Message: "savol matni bo'sh"})
				continue
			}
			current = &model.QuestionDraft{Text: text}
			startLine = lineNo
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			if current == nil {
				errors = append(errors, ParseError{Line: lineNo, Message: "variant savolsiz kelgan"})
				continue
			}
			if len(current.Options) >= len(optionLabels) {
				errors = append(errors, ParseError{Line: lineNo, Message: "variantlar soni haddan oshgan"})
				continue
			}
			text := strings.TrimSpace(line[1:])
			if text == "" {
				errors = append(errors, ParseError{Line: lineNo, Message: "variant matni bo'sh"})
				continue
			}
			label := optionLabels[len(current.Options)]
			isCorrect := strings.HasPrefix(line, "+")
			current.Options = append(current.Options, model.Option{Label: label, Text: text, IsCorrect: isCorrect})
			if isCorrect {
				current.CorrectOption = label
			}
		default:
			errors = append(errors, ParseError{Line: lineNo, Message: "satr '#', '+' yoki '-' bilan boshlanishi kerak"})
		}
	}
	if err := scanner.Err(); err != nil {
		errors = append(errors, ParseError{Line: lineNo, Message: "faylni o'qib bo'lmadi: " + err.Error()})
		return questions, errors
	}
	flush()

	return questions, errors
}

func validate(q *model.QuestionDraft) string {
	if len(q.Options) < 2 {
		return "savolda kamida ikkita variant bo'lishi kerak"
	}
	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return "savolda to'g'ri variant belgilanmagan"
	}
	if correct > 1 {
		return "savolda bittadan ortiq to'g'ri variant"
	}
	return ""
}
