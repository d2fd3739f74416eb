package txcore

import "errors"

// DefaultClassifier implements the generic error classification algorithm:
// walk an error's causal chain deepest-first, asking Heuristics about each
// frame's diagnostic tuple (connection first, transient second), and stop
// at the first positive answer. An error with no positive answer anywhere
// in its chain is Fatal.
//
// The deepest frame is consulted first because vendor wrappers frequently
// re-wrap a driver exception; the driver's own diagnostics are more
// authoritative than any outer layer added on the way up.
type DefaultClassifier struct {
	heuristics Heuristics
}

// NewDefaultClassifier constructs a DefaultClassifier. Panics if heuristics
// is nil, mirroring the fail-fast convention used for required collaborators
// elsewhere in this package.
func NewDefaultClassifier(heuristics Heuristics) *DefaultClassifier {
	if heuristics == nil {
		panic("heuristics cannot be nil")
	}
	return &DefaultClassifier{heuristics: heuristics}
}

func (c *DefaultClassifier) Classify(err error) ErrorKind {
	if err == nil {
		return Fatal
	}

	chain := causeChain(err)
	for i := len(chain) - 1; i >= 0; i-- {
		d := extractDiagnostics(chain[i])
		if c.heuristics.IsConnectionIssue(d) {
			return Connection
		}
		if c.heuristics.IsTransientIssue(d) {
			return Transient
		}
	}
	return Fatal
}

// causeChain returns err's causal chain ordered outermost to innermost
// (chain[0] == err, chain[len-1] == the deepest cause). Go's error chains
// only expose a single-step Unwrap, so this walks it to build the slice the
// deepest-first algorithm needs.
func causeChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}

// structuredDiagnosable is satisfied by an error frame that carries a
// driver diagnostic triple directly, e.g. a wrapped [sqlstate, code,
// message] payload from a driver's own exception type.
type structuredDiagnosable interface {
	DriverDiagnostics() (sqlState string, driverCode int, message string)
}

// statusCoded is satisfied by an error frame exposing its own status code,
// which may be a numeric driver code or a textual SQLSTATE-shaped string.
type statusCoded interface {
	StatusCode() any
}

// sqlStateAccessor is satisfied by an error frame exposing a SQLSTATE-like
// diagnostic accessor distinct from StatusCode (the common shape used by
// several SQL driver packages).
type sqlStateAccessor interface {
	SQLState() string
}

// extractDiagnostics applies the single-frame extraction algorithm: seed
// from a structured triple if present, then the frame's own status code,
// then (only if still unset) a dedicated SQLSTATE accessor. A textual
// status code always wins over the SQLSTATE accessor since it runs first.
func extractDiagnostics(err error) Diagnostics {
	var d Diagnostics
	d.Message = err.Error()

	if sd, ok := err.(structuredDiagnosable); ok {
		sqlState, driverCode, _ := sd.DriverDiagnostics()
		if sqlState != "" {
			d.SQLState = sqlState
			d.HasSQLState = true
		}
		if driverCode != 0 {
			d.DriverCode = driverCode
			d.HasDriverCode = true
		}
	}

	if sc, ok := err.(statusCoded); ok {
		switch code := sc.StatusCode().(type) {
		case int:
			if code != 0 && !d.HasDriverCode {
				d.DriverCode = code
				d.HasDriverCode = true
			}
		case string:
			if len(code) >= 5 && !d.HasSQLState {
				d.SQLState = code[:5]
				d.HasSQLState = true
			}
		}
	}

	if !d.HasSQLState {
		if sa, ok := err.(sqlStateAccessor); ok {
			if s := sa.SQLState(); s != "" {
				d.SQLState = s
				d.HasSQLState = true
			}
		}
	}

	return d
}
