// Package auth centralizes capability checks. Every workflow service calls
// Authorize at the top of its mutating operations instead of re-deriving the
// role from a token ad hoc per call site. Route-level middleware remains the
// outer gate; this is the inner, testable one.
package auth

import (
	"github.com/google/uuid"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

// Actor is the authenticated caller as the core sees it. Role resolution is
// an external collaborator; services consume the result, never decide it.
type Actor struct {
	ID  uuid.UUID
	Rol string
}

// Operation names every capability-gated action in the ledger.
type Operation string

const (
	OpCrearVenta         Operation = "venta.crear"
	OpAnularVenta        Operation = "venta.anular"
	OpCrearDevolucion    Operation = "devolucion.crear"
	OpResolverDevolucion Operation = "devolucion.resolver"
	OpCrearCompra        Operation = "compra.crear"
	OpRecibirCompra      Operation = "compra.recibir"
	OpAnularCompra       Operation = "compra.anular"
	OpCerrarCaja         Operation = "cierre.cerrar"
	OpReabrirCierre      Operation = "cierre.reabrir"
	OpAjustarInventario  Operation = "inventario.ajustar"
	OpTransferirStock    Operation = "inventario.transferir"
	OpGestionarCatalogo  Operation = "catalogo.gestionar"
)

// capabilities maps each operation to the roles allowed to perform it.
var capabilities = map[Operation][]string{
	OpCrearVenta:         {model.RolAdmin, model.RolSecretaria, model.RolMedico},
	OpAnularVenta:        {model.RolAdmin},
	OpCrearDevolucion:    {model.RolAdmin, model.RolSecretaria, model.RolMedico},
	OpResolverDevolucion: {model.RolAdmin, model.RolMedico},
	OpCrearCompra:        {model.RolAdmin, model.RolSecretaria},
	OpRecibirCompra:      {model.RolAdmin, model.RolSecretaria},
	OpAnularCompra:       {model.RolAdmin},
	OpCerrarCaja:         {model.RolAdmin, model.RolSecretaria},
	OpReabrirCierre:      {model.RolAdmin},
	OpAjustarInventario:  {model.RolAdmin},
	OpTransferirStock:    {model.RolAdmin},
	OpGestionarCatalogo:  {model.RolAdmin},
}

// Authorize returns a typed authorization error when the actor's role is not
// permitted for the operation.
func Authorize(actor Actor, op Operation) error {
	for _, rol := range capabilities[op] {
		if actor.Rol == rol {
			return nil
		}
	}
	return apperror.Authorization("El rol '" + actor.Rol + "' no tiene permisos para esta operación")
}
