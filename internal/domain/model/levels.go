package model

// Level курс/ступень обучения ("Bakalavr 1-kurs" и т.д.)
type Level struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Faculty факультет, справочник из HEMIS
type Faculty struct {
	ID      int     `json:"id"`
	HemisID *int    `json:"hemis_id,omitempty"`
	Name    string  `json:"name"`
	Code    *string `json:"code,omitempty"`
}
