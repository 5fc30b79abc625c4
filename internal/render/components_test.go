package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-courses/internal/document"
	"github.com/p-n-ai/pai-courses/internal/render"
)

func TestDiscriminator_KnownVector(t *testing.T) {
	// Anchor's discriminator for an instruction named "initialize".
	got := render.Discriminator("global:initialize")
	assert.Equal(t, [8]byte{175, 175, 109, 31, 13, 152, 155, 237}, got)
}

func TestDiscriminatorCalculator_Modes(t *testing.T) {
	tests := []struct {
		name     string
		props    document.Props
		preimage string
		wantErr  bool
	}{
		{
			name:     "instruction default",
			props:    document.Props{{Name: "value", Value: "initialize"}},
			preimage: "global:initialize",
		},
		{
			name:     "instruction camel case",
			props:    document.Props{{Name: "value", Value: "initializeAccount"}, {Name: "displayMode", Value: "instruction"}},
			preimage: "global:initialize_account",
		},
		{
			name:     "account",
			props:    document.Props{{Name: "value", Value: "escrow_state"}, {Name: "displayMode", Value: "account"}},
			preimage: "account:EscrowState",
		},
		{
			name:     "event",
			props:    document.Props{{Name: "value", Value: "DepositMade"}, {Name: "displayMode", Value: "event"}},
			preimage: "event:DepositMade",
		},
		{
			name:    "missing value",
			props:   document.Props{{Name: "displayMode", Value: "account"}},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			props:   document.Props{{Name: "value", Value: "x"}, {Name: "displayMode", Value: "program"}},
			wantErr: true,
		},
	}

	reg := render.Builtins()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := document.Body{document.ComponentNode("AnchorDiscriminatorCalculator", tt.props...)}
			nodes, err := render.RenderAll(body, reg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			assert.Equal(t, tt.preimage, nodes[0].Data["preimage"])
			assert.Len(t, nodes[0].Data["discriminator"], 8)
			assert.Equal(t, tt.props, nodes[0].Props)
		})
	}
}

func TestCallout(t *testing.T) {
	reg := render.Builtins()

	nodes, err := render.RenderAll(document.Body{document.ComponentNode("Callout")}, reg)
	require.NoError(t, err)
	assert.Equal(t, "info", nodes[0].Data["variant"])

	nodes, err = render.RenderAll(document.Body{
		document.ComponentNode("Callout", document.Prop{Name: "type", Value: "warning"}),
	}, reg)
	require.NoError(t, err)
	assert.Equal(t, "warning", nodes[0].Data["variant"])

	_, err = render.RenderAll(document.Body{
		document.ComponentNode("Callout", document.Prop{Name: "type", Value: "rainbow"}),
	}, reg)
	require.Error(t, err)
}
