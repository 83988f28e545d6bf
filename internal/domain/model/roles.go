package model

// Роли пользователей API. Завязаны на claim "role" в JWT,
// не следует менять значения без миграции выданных токенов.
const (
	RoleStudent     = "student"
	RoleAdmin       = "admin"
	RoleDekan       = "dekan" // только просмотр, без выставления баллов
	RoleKichikAdmin = "kichik_admin"
)
