package memory_test

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/adapters/memory"
	"github.com/aretw0/cuepoint/pkg/domain"
	contract "github.com/aretw0/cuepoint/pkg/ports/tests"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewLoader(`{
		"variables": {"score": {"type": "number"}},
		"triggers": [{"event": "click", "eventTarget": "#btn", "action": "next"}]
	}`)

	contract.ConfigLoaderContractTest(t, loader)
}

func TestInMemoryLoader_FromConfig(t *testing.T) {
	loader, err := memory.NewFromConfig(&domain.Config{
		Variables: map[string]domain.VariableDef{"score": {Type: "number"}},
		Triggers:  []domain.TriggerConfig{{Event: "press", EventTarget: "btn", Action: "next"}},
	})
	require.NoError(t, err)

	contract.ConfigLoaderContractTest(t, loader)
}
