package service

import "math"

// gpaScoreMap таблица соответствия GPA и конкурсного балла.
// Ключ — GPA, округлённый до одного знака и умноженный на десять.
var gpaScoreMap = map[int]float64{
	50: 10.0,
	49: 9.7,
	48: 9.3,
	47: 9.0,
	46: 8.7,
	45: 8.3,
	44: 8.0,
	43: 7.7,
	42: 7.3,
	41: 7.0,
	40: 6.7,
	39: 6.3,
	38: 6.0,
	37: 5.7,
	36: 5.3,
	35: 5.0,
}

// GPAScore переводит GPA в конкурсный балл. Значения вне таблицы дают ноль.
func GPAScore(gpa float64) float64 {
	key := int(math.Round(gpa * 10))
	return gpaScoreMap[key]
}
