package service

import (
	"context"
	"fmt"
	"sort"
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

type VentaService interface {
	RegistrarVenta(ctx context.Context, actor auth.Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo          repository.VentaRepository
	productoRepo  repository.ProductoRepository
	secuenciaRepo repository.SecuenciaRepository
	cierreRepo    repository.CierreRepository
	ledger        LedgerService
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	secuenciaRepo repository.SecuenciaRepository,
	cierreRepo repository.CierreRepository,
	ledger LedgerService,
) VentaService {
	return &ventaService{
		repo:          repo,
		productoRepo:  productoRepo,
		secuenciaRepo: secuenciaRepo,
		cierreRepo:    cierreRepo,
		ledger:        ledger,
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Atomic multi-item, multi-payment-method sale:
//   1. Pre-flight (outside TX): resolve products, snapshot price/identity,
//      validate payment methods and the exact payment-sum invariant.
//   2. BEGIN TX: allocate numero_venta from the counter row, insert the sale
//      with items and payment methods, then one ledger movement per item —
//      items ordered by product id so two concurrent multi-item sales cannot
//      deadlock on product row locks.
//   3. COMMIT. Any item hitting insufficient stock aborts the whole sale.

func (s *ventaService) RegistrarVenta(ctx context.Context, actor auth.Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if err := auth.Authorize(actor, auth.OpCrearVenta); err != nil {
		return nil, err
	}

	// Every method must carry a positive amount (a negative row would corrupt
	// the cierre's per-method totals) and every non-cash method its comprobante.
	for _, m := range req.Metodos {
		if !m.Monto.IsPositive() {
			return nil, apperror.Validation(
				fmt.Sprintf("el monto del método %s debe ser mayor que cero", m.Metodo))
		}
		if m.Metodo != model.MetodoEfectivo && (m.ComprobantePath == nil || *m.ComprobantePath == "") {
			return nil, apperror.ValidationCode(apperror.CodeMissingComprobante,
				fmt.Sprintf("el método %s requiere comprobante_path", m.Metodo))
		}
	}

	var pacienteID *uuid.UUID
	if req.PacienteID != nil {
		pid, err := uuid.Parse(*req.PacienteID)
		if err != nil {
			return nil, apperror.Validation("paciente_id inválido")
		}
		pacienteID = &pid
	}
	var recibioEfectivoID *uuid.UUID
	if req.RecibioEfectivoID != nil {
		rid, err := uuid.Parse(*req.RecibioEfectivoID)
		if err != nil {
			return nil, apperror.Validation("recibio_efectivo_id inválido")
		}
		recibioEfectivoID = &rid
	}

	// Resolve products and snapshot identity + price (pre-flight, outside TX).
	type resolvedItem struct {
		producto *model.Producto
		cantidad int
		subtotal decimal.Decimal
	}

	resolved := make([]resolvedItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apperror.Validation("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apperror.NotFound(fmt.Sprintf("producto %s no encontrado", item.ProductoID))
		}
		if !p.Activo {
			return nil, apperror.BusinessRule(apperror.CodeInactiveProduct,
				fmt.Sprintf("el producto %s está inactivo y no puede venderse", p.Codigo))
		}
		lineSubtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{producto: p, cantidad: item.Cantidad, subtotal: lineSubtotal})
	}

	total := subtotal

	// Exact payment-sum invariant: Σ metodos == total, no tolerance.
	totalMetodos := decimal.Zero
	for _, m := range req.Metodos {
		totalMetodos = totalMetodos.Add(m.Monto)
	}
	if !totalMetodos.Equal(total) {
		return nil, apperror.ValidationCode(apperror.CodePaymentMismatch,
			fmt.Sprintf("la suma de métodos de pago (%s) no coincide con el total de la venta (%s)",
				totalMetodos.String(), total.String()))
	}

	// Stable lock order across concurrent multi-item sales.
	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].producto.ID.String() < resolved[j].producto.ID.String()
	})

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// A date with a cerrado closing accepts no further sales until the
		// closing is reopened.
		cerrado, err := s.cierreRepo.ExisteCerradoPorFechaTx(tx, time.Now())
		if err != nil {
			return apperror.Internal("error verificando el cierre del día", err)
		}
		if cerrado {
			return apperror.BusinessRule(apperror.CodeDateClosed,
				"el día ya tiene un cierre de caja; reábralo para registrar ventas")
		}

		numero, err := s.secuenciaRepo.NextTx(tx, model.SeqVentas)
		if err != nil {
			return apperror.Internal("error asignando numero de venta", err)
		}

		venta = model.Venta{
			Numero:            numero,
			PacienteID:        pacienteID,
			Subtotal:          subtotal,
			Total:             total,
			Estado:            model.VentaActiva,
			VendedorID:        actor.ID,
			RecibioEfectivoID: recibioEfectivoID,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     r.producto.ID,
				ProductoCodigo: r.producto.Codigo,
				ProductoTipo:   r.producto.Tipo,
				ProductoTalla:  r.producto.Talla,
				PrecioUnitario: r.producto.Precio,
				Cantidad:       r.cantidad,
				Subtotal:       r.subtotal,
			})
		}
		for _, m := range req.Metodos {
			venta.Metodos = append(venta.Metodos, model.VentaMetodo{
				Metodo:          m.Metodo,
				Monto:           m.Monto,
				ComprobantePath: m.ComprobantePath,
			})
		}

		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return apperror.Internal("error creando venta", err)
		}

		// One ledger movement per item, same atomic unit as the sale row.
		for _, r := range resolved {
			if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
				ProductoID:     r.producto.ID,
				Tipo:           model.MovimientoVenta,
				Cantidad:       r.cantidad,
				ReferenciaTipo: model.RefVenta,
				ReferenciaID:   venta.ID,
				Notas:          fmt.Sprintf("Venta %s", venta.NumeroFormateado()),
				Actor:          actor.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return ventaToResponse(&venta), nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Admin-only. Restores each item's quantity to the normal pool with a
// compra-type reversal movement referencing the sale. Payment-method rows are
// NOT retracted; they remain for audit.

func (s *ventaService) AnularVenta(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error {
	if err := auth.Authorize(actor, auth.OpAnularVenta); err != nil {
		return err
	}
	if len(justificacion) < 10 {
		return apperror.Validation("la justificación debe tener al menos 10 caracteres")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("venta no encontrada")
		}
		if locked.Estado == model.VentaAnulada {
			return apperror.BusinessRule(apperror.CodeAlreadyVoided, "la venta ya está anulada")
		}

		venta, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return apperror.Internal("error cargando venta", err)
		}

		items := make([]model.VentaItem, len(venta.Items))
		copy(items, venta.Items)
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductoID.String() < items[j].ProductoID.String()
		})
		for _, item := range items {
			if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
				ProductoID:     item.ProductoID,
				Tipo:           model.MovimientoCompra,
				Cantidad:       item.Cantidad,
				ReferenciaTipo: model.RefVenta,
				ReferenciaID:   venta.ID,
				Notas:          fmt.Sprintf("Anulación venta %s — %s", venta.NumeroFormateado(), justificacion),
				Actor:          actor.ID,
			}); err != nil {
				return err
			}
		}

		now := time.Now()
		venta.Estado = model.VentaAnulada
		venta.AnuladaPor = &actor.ID
		venta.AnuladaAt = &now
		venta.JustificacionAnulacion = &justificacion
		if err := s.repo.UpdateAnulacionTx(tx, venta); err != nil {
			return apperror.Internal("error anulando venta", err)
		}
		return nil
	})
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ListarVentas returns a paginated list of sales, filtered by date and estado.
// Default filter: today's active sales.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaActiva
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando ventas", err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ID:             item.ID.String(),
			ProductoID:     item.ProductoID.String(),
			ProductoCodigo: item.ProductoCodigo,
			ProductoTipo:   item.ProductoTipo,
			ProductoTalla:  item.ProductoTalla,
			PrecioUnitario: item.PrecioUnitario,
			Cantidad:       item.Cantidad,
			Subtotal:       item.Subtotal,
		})
	}
	metodos := make([]dto.MetodoPagoResponse, 0, len(v.Metodos))
	for _, m := range v.Metodos {
		metodos = append(metodos, dto.MetodoPagoResponse{
			Metodo:          m.Metodo,
			Monto:           m.Monto,
			ComprobantePath: m.ComprobantePath,
		})
	}
	var pacienteID *string
	if v.PacienteID != nil {
		pid := v.PacienteID.String()
		pacienteID = &pid
	}
	return &dto.VentaResponse{
		ID:          v.ID.String(),
		Numero:      v.Numero,
		NumeroVenta: v.NumeroFormateado(),
		PacienteID:  pacienteID,
		Items:       items,
		Metodos:     metodos,
		Subtotal:    v.Subtotal,
		Total:       v.Total,
		Estado:      v.Estado,
		VendedorID:  v.VendedorID.String(),
		CreatedAt:   v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
