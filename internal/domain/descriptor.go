package domain

// Descriptor is the transport-safe representation of a submitted
// computation. Source is the textual/serialised form the strict-mode
// validator inspects (see internal/validate); Fn is the rehydrated
// callable the worker actually invokes.
//
// A real cross-process implementation would ship Source over the wire and
// rehydrate it into Fn on the worker side (source-to-source transport) or
// look Fn up in an AOT-registered task table keyed by Name (safer).
// Because this pool's
// workers are in-process goroutines, Fn is carried directly and Source
// exists purely so the policy scan in internal/validate has text to scan.
type Descriptor struct {
	// Name identifies the computation for logging and task-table lookup.
	Name string

	// Source is the textual form of the function, used only for the
	// strict-mode pattern scan. Empty means "nothing to scan" rather than
	// "reject" — SubmitFunc callers hand in a real Go closure with no
	// source text to speak of, so the form check and the policy scan both
	// skip a Descriptor with an empty Source, leaving only the
	// argument-shape check to run.
	Source string

	// Fn is the rehydrated callable. It receives the submitted arguments
	// and returns a transport-safe result or an error.
	Fn func(args []any) (any, error)
}
