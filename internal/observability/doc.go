// Package observability monta o logger (zap) e as métricas (Prometheus)
// usados pelos binários e pelo middleware de controle de requisições.
package observability
