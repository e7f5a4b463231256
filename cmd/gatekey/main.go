// Command gatekey é a ferramenta do operador para o kill switch: gera a chave
// dinâmica do minuto atual e chama as rotas de controle do gateway.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
