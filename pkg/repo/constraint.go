package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/iota-admin/pkg/serrors"
)

type ConstraintKind string

const (
	UniqueViolation     ConstraintKind = "unique"
	ForeignKeyViolation ConstraintKind = "foreign_key"
)

// Violation describes a constraint the store refused a write on.
type Violation struct {
	Kind       ConstraintKind
	Constraint string
}

// ConstraintError is implemented by non-Postgres stores that enforce the same
// named constraints.
type ConstraintError interface {
	error
	StoreViolation() Violation
}

var writeConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "admin",
	Subsystem: "store",
	Name:      "conflicts_total",
	Help:      "Total number of writes refused by a store constraint, by kind and constraint.",
}, []string{"kind", "constraint"})

// AsConstraint recognizes constraint violations from Postgres and from any
// store implementing ConstraintError.
func AsConstraint(err error) (Violation, bool) {
	if err == nil {
		return Violation{}, false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return Violation{Kind: UniqueViolation, Constraint: pgErr.ConstraintName}, true
		case "23503": // foreign_key_violation
			return Violation{Kind: ForeignKeyViolation, Constraint: pgErr.ConstraintName}, true
		}
		return Violation{}, false
	}
	var storeErr ConstraintError
	if errors.As(err, &storeErr) {
		return storeErr.StoreViolation(), true
	}
	return Violation{}, false
}

// RecordConflict counts a constraint violation surfaced to a caller.
func RecordConflict(v Violation) {
	writeConflicts.WithLabelValues(string(v.Kind), v.Constraint).Inc()
}

// ConstraintCode is the service error a named constraint is reported as.
type ConstraintCode struct {
	Code    string
	Message string
}

// MapError turns a write error into a service error: known constraint
// violations become their domain code, coded errors pass through and
// everything else is wrapped with fallback.
func MapError(err error, codes map[string]ConstraintCode, fallback string) error {
	if err == nil {
		return nil
	}
	if _, ok := serrors.As(err); ok {
		return err
	}
	if v, ok := AsConstraint(err); ok {
		RecordConflict(v)
		if c, known := codes[v.Constraint]; known {
			return serrors.Wrap(c.Code, c.Message, err)
		}
	}
	return serrors.Boundary(err, fallback)
}
