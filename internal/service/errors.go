package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind is the machine-readable error category the HTTP layer maps to a status.
type Kind string

const (
	KindValidacion Kind = "validation_error"
	KindNegocio    Kind = "business_rule_violation"
	KindNoEncontro Kind = "not_found"
	KindConflicto  Kind = "integrity_conflict"
	KindIntegridad Kind = "integrity_check_failed"
	KindInterno    Kind = "internal_error"
)

// Error is the typed error every ledger operation returns.
// Two errors are equal under errors.Is when their Code matches, so callers can
// compare against the Err* templates below regardless of message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Conf returns a copy of e with a formatted message.
func (e *Error) Conf(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

// Campo returns a copy of e carrying field-level detail.
func (e *Error) Campo(campo, detalle string) *Error {
	c := *e
	c.Fields = map[string]string{campo: detalle}
	return &c
}

func (e *Error) envolver(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

var (
	ErrValidacion              = &Error{Kind: KindValidacion, Code: "validation", Message: "datos de entrada invalidos"}
	ErrCantidadInvalida        = &Error{Kind: KindValidacion, Code: "invalid_quantity", Message: "la cantidad debe ser un numero mayor a cero"}
	ErrDecimalesNoPermitidos   = &Error{Kind: KindNegocio, Code: "decimals_not_allowed", Message: "la unidad de medida no admite cantidades decimales"}
	ErrStockInsuficiente       = &Error{Kind: KindNegocio, Code: "insufficient_stock", Message: "stock insuficiente"}
	ErrFondosCajaInsuficientes = &Error{Kind: KindNegocio, Code: "insufficient_till_funds", Message: "saldo de caja insuficiente"}
	ErrPagoInsuficiente        = &Error{Kind: KindNegocio, Code: "insufficient_payment", Message: "el monto total de pagos es insuficiente"}
	ErrEstadoInvalido          = &Error{Kind: KindNegocio, Code: "invalid_status", Message: "el estado de la transaccion no permite la operacion"}
	ErrYaEliminada             = &Error{Kind: KindNegocio, Code: "already_deleted", Message: "el registro ya fue eliminado"}
	ErrDevolucionExcedeVendido = &Error{Kind: KindNegocio, Code: "refund_exceeds_sold", Message: "la cantidad devuelta supera la cantidad vendida"}
	ErrNoEncontrado            = &Error{Kind: KindNoEncontro, Code: "not_found", Message: "registro no encontrado"}
	ErrReferenciaHuerfana      = &Error{Kind: KindNoEncontro, Code: "dangling_reference", Message: "la transaccion referencia un registro inexistente"}
	ErrConflictoIntegridad     = &Error{Kind: KindConflicto, Code: "integrity_conflict", Message: "conflicto de integridad"}
	ErrTransaccionIncompleta   = &Error{Kind: KindIntegridad, Code: "incomplete_transaction", Message: "la transaccion esta incompleta"}
	ErrReversionIncompleta     = &Error{Kind: KindIntegridad, Code: "reversal_incomplete", Message: "la reversion no se completo"}
	ErrInterno                 = &Error{Kind: KindInterno, Code: "internal", Message: "error interno"}
)

// KindOf returns the category of err; untyped errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInterno
}

// traducir converts store errors into the ledger taxonomy. Typed errors pass
// through unchanged so the kind raised deep inside a unit of work survives the
// rollback.
func traducir(err error, contexto string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNoEncontrado.Conf("%s: no encontrado", contexto).envolver(err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrConflictoIntegridad.Conf("%s: conflicto de integridad", contexto).envolver(err)
	default:
		return ErrInterno.Conf("%s", contexto).envolver(err)
	}
}
