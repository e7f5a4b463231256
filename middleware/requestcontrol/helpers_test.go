package requestcontrol

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"request-control-gateway/middleware/requestcontrol/application"
	"request-control-gateway/middleware/requestcontrol/domain"
	"request-control-gateway/middleware/requestcontrol/infra"

	"github.com/stretchr/testify/require"
)

var exampleNow = time.Date(2025, 8, 27, 10, 43, 30, 0, time.Local)

func fixedClock() time.Time { return exampleNow }

func newService(cfg domain.Config) (*application.Service, *infra.AtomicState) {
	state := infra.NewAtomicState(cfg.DefaultEnabled)
	return application.NewService(cfg, state, nil), state
}

type envelopeBody struct {
	Success bool           `json:"success"`
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return env
}
