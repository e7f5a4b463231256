// Package requestcontrol fornece adapters HTTP (net/http e gin) para o kill switch
// global de requisições e para as rotas administrativas que o controlam.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (admissão por path, alterar/consultar flag, chave dinâmica)
//   - infra: implementações concretas (flag atômica, token bucket, Redis)
//   - requestcontrol (este pacote): middlewares HTTP + rotas de controle + envelope JSON
//
// Fluxo no gateway:
//
//  1. Middleware chama Service.ShouldAllow(r.URL.Path)
//  2. Path na whitelist (inclui o próprio path de controle) passa sempre
//  3. Com a flag desligada, responde 503 com o envelope {success,code,message,data}
//  4. Se permitido, chama o próximo handler (ex: reverse proxy)
//
// As rotas de controle ficam em {controlPath}/{enabled}/{secretKey},
// {controlPath}/status/{secretKey} e {controlPath}/info.
package requestcontrol
