package zkp

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	g := Default()
	require.NoError(t, g.Validate())
	assert.Equal(t, 1024, g.P.BitLen())
	assert.Equal(t, 160, g.Q.BitLen())
	assert.Same(t, g, Default(), "default parameters are built once")
}

func TestNew(t *testing.T) {
	// 2 has order 11 modulo 23, and so does 8 = 2³.
	tests := []struct {
		name    string
		p, q    uint64
		a, b    uint64
		wantErr error
	}{
		{"valid toy group", 23, 11, 2, 8, nil},
		{"alpha of wrong order", 23, 11, 5, 8, ErrGeneratorOrder},
		{"beta out of range", 23, 11, 2, 23, ErrGeneratorRange},
		{"alpha is one", 23, 11, 1, 8, ErrGeneratorRange},
		{"equal generators", 23, 11, 2, 2, ErrEqualGenerators},
		{"q not below p", 23, 29, 2, 8, ErrSubgroupTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(
				natBytes(tt.p), natBytes(tt.q),
				natBytes(tt.a), natBytes(tt.b),
			)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, g)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g)
		})
	}
}

func TestValidate_NilFields(t *testing.T) {
	var g *Params
	assert.ErrorIs(t, g.Validate(), ErrNilFields)
	assert.ErrorIs(t, (&Params{}).Validate(), ErrNilFields)

	_, err := New(nil, natBytes(11), natBytes(2), natBytes(8))
	assert.ErrorIs(t, err, ErrNilFields)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "zkp: alpha cannot be equal to beta", ErrEqualGenerators.Error())
}

func natBytes(v uint64) []byte {
	return new(saferith.Nat).SetUint64(v).Bytes()
}

func toyParams(t *testing.T) *Params {
	t.Helper()
	g, err := New(natBytes(23), natBytes(11), natBytes(2), natBytes(8))
	require.NoError(t, err)
	return g
}
