package sqlite

import (
	_ "embed"
)

// sentNotesSchema — локальная история отправленных заметок: id, сервер и токен
// удаления, чтобы `destroy <id>` работал без токена в аргументах. Ключи и
// пароли сюда не пишутся: по истории заметку прочитать нельзя.
// Схема идемпотентна (IF NOT EXISTS) и применяется при каждом открытии.
//
//go:embed migrations/001_init.sql
var sentNotesSchema string
