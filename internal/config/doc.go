// Package config carrega a configuração dos binários: defaults, arquivo YAML
// opcional (com substituição ${VAR} e ${VAR:-default}) e, por último,
// variáveis de ambiente. A configuração é lida uma vez no start.
package config
