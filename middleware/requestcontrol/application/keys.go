package application

import (
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DynamicKeyLength é o tamanho da chave dinâmica (MMHHDD).
const DynamicKeyLength = 6

// DeriveKey gera a chave dinâmica para o instante t no formato MMHHDD
// (minuto, hora 24h, dia do mês), usando o fuso de t.
//
// Ex.: 2025-08-27 10:43:30 -> "431027".
func DeriveKey(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d", t.Minute(), t.Hour(), t.Day())
}

// KeyValidator decide se uma chave fornecida autoriza uma operação de controle.
//
// Com SecretKey fixa a comparação é exata; no modo dinâmico a chave só vale
// dentro do mesmo minuto do `now` recebido (não existe janela de tolerância).
type KeyValidator struct {
	SecretKey string
	Dynamic   bool
	Logger    *zap.Logger
}

func (v KeyValidator) Validate(provided string, now time.Time) bool {
	log := v.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if !v.Dynamic {
		ok := subtle.ConstantTimeCompare([]byte(provided), []byte(v.SecretKey)) == 1
		if !ok {
			log.Warn("static secret key validation failed")
		}
		return ok
	}

	if !wellFormedDynamicKey(provided) {
		log.Warn("dynamic key validation failed: invalid format",
			zap.Int("expected_length", DynamicKeyLength),
			zap.Int("length", len(provided)),
		)
		return false
	}

	ok := subtle.ConstantTimeCompare([]byte(provided), []byte(DeriveKey(now))) == 1
	if ok {
		log.Info("dynamic key validation successful", zap.Time("at", now))
	} else {
		log.Warn("dynamic key validation failed: key mismatch", zap.Time("at", now))
	}
	return ok
}

func wellFormedDynamicKey(s string) bool {
	if len(s) != DynamicKeyLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
