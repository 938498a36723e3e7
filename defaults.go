package gridchain

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Defaults used by stages that take the pipeline's ambient collaborators.

// LoggerOr returns l, or a NopLogger when l is nil.
func LoggerOr(l Logger) Logger { return coalesce[Logger](l, NopLogger{}) }

// HooksOr returns h, or NopHooks when h is nil.
func HooksOr(h Hooks) Hooks { return coalesce[Hooks](h, NopHooks{}) }
