package domain

import "errors"

var (
	// ErrUnauthorized indica chave secreta errada ou malformada numa operação administrativa.
	ErrUnauthorized = errors.New("invalid secret key")
	// ErrServiceUnavailable indica gate desligado e path fora da whitelist.
	ErrServiceUnavailable = errors.New("service unavailable")
)
