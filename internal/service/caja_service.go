package service

import (
	"context"
	"time"

	"contalink/internal/dto"
	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	Saldo(ctx context.Context, cajaID uuid.UUID) (*dto.SaldoResponse, error)
	RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error)
	ListarMovimientos(ctx context.Context, cajaID uuid.UUID) ([]dto.MovimientoCajaResponse, error)
}

type cajaService struct {
	tx     repository.Transactor
	repo   repository.CajaRepository
	ledger CajaLedger
}

func NewCajaService(tx repository.Transactor, repo repository.CajaRepository, ledger CajaLedger) CajaService {
	return &cajaService{tx: tx, repo: repo, ledger: ledger}
}

// ── Saldo ─────────────────────────────────────────────────────────────────────
// Always aggregated from the movement ledger; there is no stored balance.

func (s *cajaService) Saldo(ctx context.Context, cajaID uuid.UUID) (*dto.SaldoResponse, error) {
	var resp *dto.SaldoResponse
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.FindCajaTx(ctx, tx, cajaID, false); err != nil {
			return traducir(err, "caja")
		}
		saldo, err := s.ledger.Saldo(ctx, tx, cajaID)
		if err != nil {
			return traducir(err, "saldo de caja")
		}
		resp = &dto.SaldoResponse{CajaID: cajaID.String(), Saldo: saldo}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual ingreso / egreso. Egresos never take the till below zero.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, ErrValidacion.Campo("caja_id", "uuid")
	}
	tipoPagoID, err := uuid.Parse(req.TipoPagoID)
	if err != nil {
		return nil, ErrValidacion.Campo("tipo_pago_id", "uuid")
	}
	if !req.Monto.IsPositive() {
		return nil, ErrValidacion.Campo("monto", "gt")
	}
	if err := validarMonto(req.Monto, "monto"); err != nil {
		return nil, err
	}
	direccion := model.DireccionIngreso
	switch req.Tipo {
	case "ingreso_manual":
	case "egreso_manual":
		direccion = model.DireccionEgreso
	default:
		return nil, ErrValidacion.Campo("tipo", "oneof")
	}

	var mov model.MovimientoCaja
	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		caja, err := s.repo.FindCajaTx(ctx, tx, cajaID, true)
		if err != nil {
			return traducir(err, "caja")
		}
		if caja.Estado != "abierta" {
			return ErrEstadoInvalido.Conf("la caja %s esta %s", cajaID, caja.Estado)
		}
		if direccion == model.DireccionEgreso {
			saldo, err := s.ledger.Saldo(ctx, tx, cajaID)
			if err != nil {
				return traducir(err, "saldo de caja")
			}
			if saldo.LessThan(req.Monto) {
				return ErrFondosCajaInsuficientes.Conf("saldo de caja %s menor al egreso %s", saldo.String(), req.Monto.String())
			}
		}
		movs, err := s.ledger.Registrar(ctx, tx, Asiento{
			CajaID:      cajaID,
			Direccion:   direccion,
			Fecha:       time.Now(),
			Descripcion: req.Descripcion,
			Pagos:       []Pago{{Monto: req.Monto, TipoPagoID: tipoPagoID}},
		})
		if err != nil {
			return traducir(err, "movimiento de caja")
		}
		mov = movs[0]
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("caja_id", cajaID.String()).Str("tipo", req.Tipo).Str("monto", req.Monto.String()).Msg("movimiento manual registrado")
	return movimientoToResponse(&mov), nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, cajaID uuid.UUID) ([]dto.MovimientoCajaResponse, error) {
	if _, err := s.repo.FindCaja(ctx, cajaID); err != nil {
		return nil, traducir(err, "caja")
	}
	movs, err := s.repo.ListMovimientos(ctx, cajaID)
	if err != nil {
		return nil, traducir(err, "movimientos de caja")
	}
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movimientoToResponse(&movs[i]))
	}
	return out, nil
}

func movimientoToResponse(m *model.MovimientoCaja) *dto.MovimientoCajaResponse {
	var ref *string
	if m.ReferenciaID != nil {
		r := m.ReferenciaID.String()
		ref = &r
	}
	return &dto.MovimientoCajaResponse{
		ID:           m.ID.String(),
		CajaID:       m.CajaID.String(),
		ReferenciaID: ref,
		Descripcion:  m.Descripcion,
		Monto:        m.Monto,
		Direccion:    string(m.Direccion),
		Fecha:        m.Fecha.Format(time.RFC3339),
	}
}
