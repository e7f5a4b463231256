// Package application contém os casos de uso do controle de requisições:
// decisão de admissão por path, alteração e consulta da flag global
// protegidas por chave secreta (fixa ou derivada do horário).
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.ShouldAllow(path) retorna um AdmissionResult (allow/reject + status).
package application
