package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/auth"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// CierreService reconciles a day's active sales against the physical cash
// count. Totals are computed server-side from the sales of the date; the
// client only supplies the count, the photo and (when needed) the
// justification for the difference.
type CierreService interface {
	CerrarDia(ctx context.Context, actor auth.Actor, req dto.CerrarDiaRequest) (*dto.CierreResponse, error)
	ReabrirCierre(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error
	ObtenerCierre(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error)
	ListarCierres(ctx context.Context, filter dto.CierreFilter) (*dto.CierreListResponse, error)
}

type cierreService struct {
	repo          repository.CierreRepository
	ventaRepo     repository.VentaRepository
	secuenciaRepo repository.SecuenciaRepository
}

func NewCierreService(
	repo repository.CierreRepository,
	ventaRepo repository.VentaRepository,
	secuenciaRepo repository.SecuenciaRepository,
) CierreService {
	return &cierreService{repo: repo, ventaRepo: ventaRepo, secuenciaRepo: secuenciaRepo}
}

// ── CerrarDia ─────────────────────────────────────────────────────────────────

func (s *cierreService) CerrarDia(ctx context.Context, actor auth.Actor, req dto.CerrarDiaRequest) (*dto.CierreResponse, error) {
	if err := auth.Authorize(actor, auth.OpCerrarCaja); err != nil {
		return nil, err
	}

	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, apperror.Validation("fecha inválida, se espera YYYY-MM-DD")
	}
	// Calendar-date comparison in server time; ISO strings order correctly.
	if req.Fecha > time.Now().Format("2006-01-02") {
		return nil, apperror.BusinessRule(apperror.CodeFutureDateClosing,
			"no se puede cerrar una fecha futura")
	}

	var cierre model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existe, err := s.repo.ExisteCerradoPorFechaTx(tx, fecha)
		if err != nil {
			return apperror.Internal("error verificando cierres existentes", err)
		}
		if existe {
			return apperror.BusinessRule(apperror.CodeDuplicateClosing,
				"la fecha ya tiene un cierre en estado cerrado")
		}

		// Totals come from the day's activo sales; voided sales are excluded.
		// Summed inside the transaction so a sale committing concurrently
		// cannot slip out of the stored totals.
		sumas, err := s.ventaRepo.SumMetodosPorFechaTx(tx, fecha)
		if err != nil {
			return apperror.Internal("error calculando totales del día", err)
		}
		totalEfectivo := montoDe(sumas, model.MetodoEfectivo)
		totalTarjeta := montoDe(sumas, model.MetodoTarjeta)
		totalTransferencia := montoDe(sumas, model.MetodoTransferencia)
		totalNequi := montoDe(sumas, model.MetodoNequi)
		granTotal := totalEfectivo.Add(totalTarjeta).Add(totalTransferencia).Add(totalNequi)

		diferencia := req.ConteoFisicoEfectivo.Sub(totalEfectivo)
		if !diferencia.IsZero() && (req.Justificacion == nil || *req.Justificacion == "") {
			return apperror.ValidationCode(apperror.CodeMissingJustification,
				"la diferencia entre el conteo físico y el total en efectivo requiere justificación")
		}

		numero, err := s.secuenciaRepo.NextTx(tx, model.SeqCierres)
		if err != nil {
			return apperror.Internal("error asignando numero de cierre", err)
		}

		cierre = model.CierreCaja{
			Numero:                  numero,
			FechaCierre:             fecha,
			TotalEfectivo:           totalEfectivo,
			TotalTarjeta:            totalTarjeta,
			TotalTransferencia:      totalTransferencia,
			TotalNequi:              totalNequi,
			GranTotal:               granTotal,
			ConteoFisicoEfectivo:    req.ConteoFisicoEfectivo,
			Diferencia:              diferencia,
			DiferenciaJustificacion: req.Justificacion,
			FotoPath:                req.FotoPath,
			Notas:                   req.Notas,
			Estado:                  model.CierreCerrado,
			CerradoPor:              actor.ID,
		}
		if err := s.repo.CreateTx(tx, &cierre); err != nil {
			return apperror.Internal("error creando cierre de caja", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return cierreToResponse(&cierre), nil
}

// ── ReabrirCierre ─────────────────────────────────────────────────────────────
// Reopening never edits the stored totals: the cerrado row flips to reabierto
// and a later re-close of the same date inserts a fresh row with a new numero.

func (s *cierreService) ReabrirCierre(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error {
	if err := auth.Authorize(actor, auth.OpReabrirCierre); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cierre, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("cierre no encontrado")
		}
		if cierre.Estado == model.CierreReabierto {
			return apperror.BusinessRule(apperror.CodeAlreadyReopened, "el cierre ya fue reabierto")
		}

		now := time.Now()
		cierre.Estado = model.CierreReabierto
		cierre.ReabiertoPor = &actor.ID
		cierre.ReabiertoAt = &now
		cierre.JustificacionReapertura = &justificacion
		if err := s.repo.UpdateReaperturaTx(tx, cierre); err != nil {
			return apperror.Internal("error reabriendo cierre", err)
		}
		return nil
	})
}

func (s *cierreService) ObtenerCierre(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error) {
	cierre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("cierre no encontrado")
	}
	return cierreToResponse(cierre), nil
}

func (s *cierreService) ListarCierres(ctx context.Context, filter dto.CierreFilter) (*dto.CierreListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	cierres, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando cierres", err)
	}
	items := make([]dto.CierreResponse, 0, len(cierres))
	for i := range cierres {
		items = append(items, *cierreToResponse(&cierres[i]))
	}
	return &dto.CierreListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func montoDe(sumas map[string]decimal.Decimal, metodo string) decimal.Decimal {
	if m, ok := sumas[metodo]; ok {
		return m
	}
	return decimal.Zero
}

func cierreToResponse(c *model.CierreCaja) *dto.CierreResponse {
	return &dto.CierreResponse{
		ID:                      c.ID.String(),
		Numero:                  c.Numero,
		NumeroCierre:            c.NumeroFormateado(),
		FechaCierre:             c.FechaCierre.Format("2006-01-02"),
		TotalEfectivo:           c.TotalEfectivo,
		TotalTarjeta:            c.TotalTarjeta,
		TotalTransferencia:      c.TotalTransferencia,
		TotalNequi:              c.TotalNequi,
		GranTotal:               c.GranTotal,
		ConteoFisicoEfectivo:    c.ConteoFisicoEfectivo,
		Diferencia:              c.Diferencia,
		DiferenciaJustificacion: c.DiferenciaJustificacion,
		FotoPath:                c.FotoPath,
		Notas:                   c.Notas,
		Estado:                  c.Estado,
		CreatedAt:               c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
