package domain

import "strings"

// DynamicSecretKey é o sentinela que ativa a chave dinâmica derivada do horário.
const DynamicSecretKey = "dynamic"

const (
	DefaultControlPath   = "/set-request"
	DefaultRejectMessage = "System is temporarily unavailable"
)

// Config é a configuração do gate. Carregada uma vez no start e tratada como
// imutável depois disso (sem lock para leitura).
type Config struct {
	// Enabled liga/desliga o mecanismo inteiro. false = tudo passa.
	Enabled bool `yaml:"enabled"`
	// DefaultEnabled é o valor inicial da flag de requisições.
	DefaultEnabled bool `yaml:"defaultEnabled"`
	// SecretKey é uma chave fixa ou DynamicSecretKey.
	SecretKey      string   `yaml:"secretKey"`
	ControlPath    string   `yaml:"controlPath"`
	WhitelistPaths []string `yaml:"whitelistPaths"`
	LogEnabled     bool     `yaml:"logEnabled"`
	RejectMessage  string   `yaml:"rejectMessage"`
	// ExposeInfo publica {controlPath}/info sem autenticação (inclui o estado atual).
	ExposeInfo bool `yaml:"exposeInfo"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		DefaultEnabled: true,
		SecretKey:      DynamicSecretKey,
		ControlPath:    DefaultControlPath,
		// o padrão do path de controle entra via Normalize, a partir do ControlPath efetivo
		WhitelistPaths: []string{
			"/actuator/**",
			"/error",
			"/favicon.ico",
		},
		RejectMessage: DefaultRejectMessage,
		ExposeInfo:    true,
	}
}

// DynamicKey informa se a validação usa a chave derivada do horário.
// Chave vazia também cai no modo dinâmico.
func (c Config) DynamicKey() bool {
	k := strings.TrimSpace(c.SecretKey)
	return k == "" || k == DynamicSecretKey
}

// ControlPattern é o padrão que cobre todo o namespace administrativo.
func (c Config) ControlPattern() string {
	return strings.TrimRight(c.ControlPath, "/") + "/**"
}

// Normalize preenche defaults e garante que o path de controle esteja
// sempre na whitelist; sem isso o operador nunca conseguiria religar o serviço.
func (c Config) Normalize() Config {
	c.ControlPath = strings.TrimSpace(c.ControlPath)
	if c.ControlPath == "" || c.ControlPath == "/" {
		c.ControlPath = DefaultControlPath
	}
	if !strings.HasPrefix(c.ControlPath, "/") {
		c.ControlPath = "/" + c.ControlPath
	}
	c.ControlPath = strings.TrimRight(c.ControlPath, "/")

	c.SecretKey = strings.TrimSpace(c.SecretKey)

	if strings.TrimSpace(c.RejectMessage) == "" {
		c.RejectMessage = DefaultRejectMessage
	}

	control := c.ControlPattern()
	out := make([]string, 0, len(c.WhitelistPaths)+1)
	seen := make(map[string]bool, len(c.WhitelistPaths)+1)
	for _, p := range append([]string{control}, c.WhitelistPaths...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	c.WhitelistPaths = out
	return c
}
