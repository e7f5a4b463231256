// Package domain define contratos e tipos de domínio do controle de requisições
// (kill switch global + whitelist de paths).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a decisão de
// admissão de detalhes de infraestrutura.
package domain
