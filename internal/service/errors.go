package service

import "errors"

var (
	// ErrValidation — некорректный запрос; конкретная причина оборачивается через %w.
	ErrValidation      = errors.New("validation error")
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrNotFound — заметки нет (в том числе уже прочитанной и удалённой).
	ErrNotFound = errors.New("note not found")
	// ErrGone — заметка существовала, но истекла или исчерпана.
	ErrGone      = errors.New("note gone")
	ErrForbidden = errors.New("invalid destroy token")
)
