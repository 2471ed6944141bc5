package auth

import "errors"

var (
	ErrWeakPassword        = errors.New("Senha deve ter no mínimo 6 caracteres")
	ErrInvalidCPF          = errors.New("CPF deve ter 11 dígitos")
	ErrEmailTaken          = errors.New("Email já cadastrado")
	ErrCPFTaken            = errors.New("CPF já cadastrado")
	ErrInvalidCredentials  = errors.New("Email ou senha incorretos")
	ErrInactiveUser        = errors.New("Usuário inativo")
	ErrInvalidRefreshToken = errors.New("Refresh token inválido ou revogado")
	ErrExpiredRefreshToken = errors.New("Refresh token expirado")
)
