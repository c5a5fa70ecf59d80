package count

import "inventario/internal/core/apperror"

// Record is a count as reported by the inventory server during a cycle.
type Record struct {
	Identity
	Registrante string `json:"registrado_por"`
	Estado      Estado `json:"estado"`
	FechaInicio string `json:"fecha_inicio,omitempty"`
	FechaFin    string `json:"fecha_fin,omitempty"`
}

// LockReason states why a count cannot be worked on.
type LockReason string

const (
	LockReasonNone LockReason = ""
	// LockReasonCompleted: the count was already finalized by this same
	// registrant, nothing left to do.
	LockReasonCompleted LockReason = "completed"
	// LockReasonCollision: another registrant finalized the same count
	// identity while this operator was working it.
	LockReasonCollision LockReason = "collision"
)

// Lock is the outcome of a lock evaluation.
type Lock struct {
	Locked      bool       `json:"locked"`
	Reason      LockReason `json:"reason,omitempty"`
	Registrante string     `json:"registrado_por,omitempty"`
}

// EvaluateLock decides whether the operator identified by registrante may
// keep editing the count named by identity, given the latest server records.
// A count is locked the moment any finalized record matches its identity;
// the reason distinguishes own completion from a collision with another
// registrant.
func EvaluateLock(identity Identity, registrante string, records []Record) Lock {
	for _, r := range records {
		if r.Numero != identity.Numero || r.Tipo != identity.Tipo || r.Tienda != identity.Tienda {
			continue
		}
		if r.Estado != EstadoFinalizado {
			continue
		}
		if r.Registrante != "" && r.Registrante != registrante {
			return Lock{Locked: true, Reason: LockReasonCollision, Registrante: r.Registrante}
		}
		return Lock{Locked: true, Reason: LockReasonCompleted, Registrante: r.Registrante}
	}
	return Lock{}
}

// LockError converts a Lock into the matching business error, or nil.
func LockError(identity Identity, lock Lock) error {
	if !lock.Locked {
		return nil
	}
	if lock.Reason == LockReasonCollision {
		return apperror.NewCountLocked(identity.Numero, string(identity.Tipo), identity.Tienda, lock.Registrante)
	}
	return apperror.NewBusinessRule(apperror.CodeCountFinished, "El conteo ya fue finalizado").
		WithDetail("numero_inventario", identity.Numero).
		WithDetail("tipo_conteo", string(identity.Tipo)).
		WithDetail("tienda", identity.Tienda)
}
