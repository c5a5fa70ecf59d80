package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/types"
	"inventario/internal/domain/count"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		existencia float64
		fisico     float64
		sistema    float64
		want       Veredicto
	}{
		{"all agree", 10, 10, 10, VeredictoConforme},
		{"recount confirms physical", 10, 10, 8, VeredictoErrorSistema},
		{"recount confirms system", 8, 10, 8, VeredictoErrorLogistic},
		{"nobody agrees", 9, 10, 8, VeredictoNuevoConteo},
		{"zeroes agree", 0, 0, 0, VeredictoConforme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(qty(tt.existencia), qty(tt.fisico), qty(tt.sistema))
			assert.Equal(t, tt.want, got)
		})
	}
}

type mockGateway struct {
	registered []Acta
	listed     []Acta
}

func (m *mockGateway) RegisterVerification(ctx context.Context, acta Acta) error {
	m.registered = append(m.registered, acta)
	return nil
}

func (m *mockGateway) ListVerifications(ctx context.Context, numero int) ([]Acta, error) {
	return m.listed, nil
}

func validActa() Acta {
	return Acta{
		Identity:      count.Identity{Numero: 3, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"},
		NumeroActa:    "ACTA-001",
		RegistradoPor: "Maria",
		Items: []Item{
			{Codigo: "A-100", Existencia: qty(10), Fisico: qty(10), Sistema: qty(8)},
		},
	}
}

func TestServiceSubmit_RecomputesVerdicts(t *testing.T) {
	gw := &mockGateway{}
	svc := NewService(gw, nil)

	acta := validActa()
	// The client claims conforme; the service must not trust it.
	acta.Items[0].Veredicto = VeredictoConforme

	out, err := svc.Submit(context.Background(), acta)
	require.NoError(t, err)

	assert.Equal(t, VeredictoErrorSistema, out.Items[0].Veredicto)
	require.Len(t, gw.registered, 1)
	assert.Equal(t, VeredictoErrorSistema, gw.registered[0].Items[0].Veredicto)
}

func TestServiceSubmit_Validation(t *testing.T) {
	svc := NewService(&mockGateway{}, nil)

	acta := validActa()
	acta.NumeroActa = ""
	_, err := svc.Submit(context.Background(), acta)
	assert.Error(t, err)

	acta = validActa()
	acta.RegistradoPor = ""
	_, err = svc.Submit(context.Background(), acta)
	assert.Error(t, err)

	acta = validActa()
	acta.Items = nil
	_, err = svc.Submit(context.Background(), acta)
	assert.Error(t, err)
}

type fixedNumerator struct{ num string }

func (f fixedNumerator) Next(prefix string, now time.Time) (string, error) {
	return f.num, nil
}

func TestServiceSubmit_NumbersUnnumberedActa(t *testing.T) {
	gw := &mockGateway{}
	svc := NewService(gw, fixedNumerator{num: "ACTA-2026-00007"})

	acta := validActa()
	acta.NumeroActa = ""

	out, err := svc.Submit(context.Background(), acta)
	require.NoError(t, err)
	assert.Equal(t, "ACTA-2026-00007", out.NumeroActa)
}

func TestServiceList_RequiresNumero(t *testing.T) {
	svc := NewService(&mockGateway{}, nil)

	_, err := svc.List(context.Background(), 0)
	assert.Error(t, err)

	_, err = svc.List(context.Background(), 3)
	assert.NoError(t, err)
}
