package service

import (
	"contalink/internal/model"

	"github.com/shopspring/decimal"
)

// Scales of the numeric columns quantities and amounts are stored in.
// Postgres rounds anything finer on insert, so finer input is rejected.
const (
	EscalaCantidad int32 = 3
	EscalaMonto    int32 = 2
)

// excedeEscala reports whether v carries significant digits past escala.
// Trailing zeros ("1.5000") are not significant.
func excedeEscala(v decimal.Decimal, escala int32) bool {
	return !v.Equal(v.Truncate(escala))
}

// ValidarCantidad checks a quantity against the decimal policy of its unit.
// A nil unit only enforces positivity and scale. It has no side effects and
// runs before any stock mutation.
func ValidarCantidad(cantidad decimal.Decimal, unidad *model.UnidadMedida) error {
	if !cantidad.IsPositive() {
		return ErrCantidadInvalida.Campo("cantidad", "gt=0")
	}
	if excedeEscala(cantidad, EscalaCantidad) {
		return ErrCantidadInvalida.
			Conf("la cantidad %s admite como maximo %d decimales", cantidad.String(), EscalaCantidad).
			Campo("cantidad", "max_decimales=3")
	}
	if unidad != nil && !unidad.PermiteDecimales && !cantidad.Equal(cantidad.Floor()) {
		return ErrDecimalesNoPermitidos.
			Conf("la unidad %s no admite la cantidad %s", unidad.Abreviatura, cantidad.String()).
			Campo("cantidad", "entero")
	}
	return nil
}

// validarMonto rejects amounts finer than the money columns.
func validarMonto(monto decimal.Decimal, campo string) error {
	if excedeEscala(monto, EscalaMonto) {
		return ErrValidacion.
			Conf("el monto %s admite como maximo %d decimales", monto.String(), EscalaMonto).
			Campo(campo, "max_decimales=2")
	}
	return nil
}
