// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - AtomicState: a flag global do gate sobre sync/atomic
//   - ClientLimiter: token bucket por cliente (golang.org/x/time/rate) que protege
//     as rotas de controle contra força bruta da chave de 6 dígitos
//   - MemoryStatsStore / RedisStatsStore: contadores de admissão
//   - MemoryAuditLog / RedisAuditLog: histórico de tentativas de controle
package infra
