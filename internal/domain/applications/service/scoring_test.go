package service

import "testing"

func TestGPAScore(t *testing.T) {
	cases := []struct {
		gpa  float64
		want float64
	}{
		{5.0, 10.0},
		{4.9, 9.7},
		{4.5, 8.3},
		{4.0, 6.7},
		{3.5, 5.0},
		{3.4, 0.0},  // ниже таблицы
		{2.0, 0.0},
		{0.0, 0.0},
		{4.86, 9.7}, // округление до одного знака
		{4.84, 9.3},
	}
	for _, c := range cases {
		if got := GPAScore(c.gpa); got != c.want {
			t.Errorf("GPAScore(%v) = %v, want %v", c.gpa, got, c.want)
		}
	}
}
