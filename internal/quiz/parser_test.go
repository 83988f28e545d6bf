package quiz

import (
	"strings"
	"testing"
)

func TestParseValidFile(t *testing.T) {
	input := `
# Eng katta sayyora qaysi?
- Mars
+ Yupiter
- Venera

# 2 + 2 = ?
+ 4
- 5
`
	questions, errs := Parse(strings.NewReader(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	first := questions[0]
	if first.Text != "Eng katta sayyora qaysi?" {
		t.Errorf("got text %q", first.Text)
	}
	if len(first.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(first.Options))
	}
	if first.CorrectOption != "B" {
		t.Errorf("got correct option %q, want B", first.CorrectOption)
	}
	if !first.Options[1].IsCorrect || first.Options[0].IsCorrect || first.Options[2].IsCorrect {
		t.Error("correctness flags do not match the '+' marker")
	}
	if first.Options[0].Label != "A" || first.Options[1].Label != "B" || first.Options[2].Label != "C" {
		t.Error("labels must follow file order")
	}
}

func TestParseNoCorrectOption(t *testing.T) {
	input := "# Savol\n- bir\n- ikki\n"
	questions, errs := Parse(strings.NewReader(input))
	if len(questions) != 0 {
		t.Errorf("question without correct option must be rejected, got %d", len(questions))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Line != 1 {
		t.Errorf("error must point at the question line, got %d", errs[0].Line)
	}
}

func TestParseMultipleCorrectOptions(t *testing.T) {
	input := "# Savol\n+ bir\n+ ikki\n"
	questions, errs := Parse(strings.NewReader(input))
	if len(questions) != 0 || len(errs) != 1 {
		t.Fatalf("got %d questions, %d errors; want 0 and 1", len(questions), len(errs))
	}
}

func TestParseOptionBeforeQuestion(t *testing.T) {
	input := "+ variant\n# Savol\n+ bir\n- ikki\n"
	questions, errs := Parse(strings.NewReader(input))
	if len(questions) != 1 {
		t.Errorf("valid question must survive, got %d", len(questions))
	}
	if len(errs) != 1 || errs[0].Line != 1 {
		t.Fatalf("got errors %v, want single error on line 1", errs)
	}
}

func TestParseCollectsAllErrors(t *testing.T) {
	input := "# Birinchi\n- yolg'iz\n\nqandaydir satr\n\n# Ikkinchi\n+ bir\n- ikki\n"
	questions, errs := Parse(strings.NewReader(input))
	if len(questions) != 1 {
		t.Errorf("got %d questions, want 1", len(questions))
	}
	// Ошибок две: вопрос без пары вариантов и строка без префикса
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestParseEmptyFile(t *testing.T) {
	questions, errs := Parse(strings.NewReader(""))
	if len(questions) != 0 || len(errs) != 0 {
		t.Errorf("empty file must yield nothing, got %d questions %d errors", len(questions), len(errs))
	}
}
