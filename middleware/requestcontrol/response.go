package requestcontrol

import (
	"encoding/json"
	"net/http"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"
)

// Envelope é o formato de resposta JSON compartilhado por rejeições e rotas de controle.
type Envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type StatusInfo struct {
	Enabled   bool      `json:"enabled"`
	Timestamp time.Time `json:"timestamp"`
	Operator  string    `json:"operator"`
}

type ServiceInfo struct {
	Available bool      `json:"available"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Enabled   bool      `json:"enabled"`
}

func success(data any, message string) Envelope {
	return Envelope{Success: true, Code: http.StatusOK, Message: message, Data: data}
}

func failure(code int, message string) Envelope {
	return Envelope{Success: false, Code: code, Message: message}
}

func rejection(dec domain.AdmissionResult) Envelope {
	code := dec.StatusCode
	if code == 0 {
		code = http.StatusServiceUnavailable
	}
	return failure(code, dec.Message)
}

// writeEnvelope usa env.Code também como status HTTP.
func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}
