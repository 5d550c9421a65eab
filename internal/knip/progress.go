package knip

// Phase is a progress checkpoint of an analysis.
type Phase struct {
	Percent int
	Label   string
}

// Checkpoints of Analyze, in order.
var (
	PhaseInit    = Phase{0, "Initializing..."}
	PhaseConfig  = Phase{10, "Checking configuration..."}
	PhaseRunning = Phase{30, "Running knip..."}
	PhaseParsing = Phase{80, "Parsing results..."}
	PhaseDone    = Phase{100, "Analysis complete"}
)

// ProgressSink receives checkpoints. Returning false asks the analysis to
// stop before the next phase.
type ProgressSink interface {
	Report(Phase) bool
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Phase) bool

func (f ProgressFunc) Report(p Phase) bool { return f(p) }

type nopSink struct{}

func (nopSink) Report(Phase) bool { return true }
