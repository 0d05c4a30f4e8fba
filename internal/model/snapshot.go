package model

// ClientInfo describes the network the measurement runs from.
type ClientInfo struct {
	Location string
	IP       string
	ISP      string
}

// Snapshot is one cumulative progress report from the measurement engine.
// Each Snapshot fully supersedes the previous one; fields are never merged
// across reports.
type Snapshot struct {
	DownloadSpeed float64
	DownloadUnit  string

	// Upload fields are set only once an upload measurement has started.
	UploadSpeed float64
	UploadUnit  string

	// Latency, bufferbloat and metadata are only reported in verbose mode.
	Latency         float64
	LatencyUnit     string
	Bufferbloat     float64
	BufferbloatUnit string
	Client          *ClientInfo
	ServerLocations []string

	IsDone            bool
	IsLatencyDone     bool
	IsBufferbloatDone bool
}

// HasDownload reports whether any download figure has arrived.
func (s Snapshot) HasDownload() bool { return s.DownloadUnit != "" }

// HasUpload reports whether the upload measurement has produced a figure.
func (s Snapshot) HasUpload() bool { return s.UploadUnit != "" }

// HasLatency reports whether an unloaded latency figure is present.
func (s Snapshot) HasLatency() bool { return s.LatencyUnit != "" }

// HasBufferbloat reports whether a loaded latency figure is present.
func (s Snapshot) HasBufferbloat() bool { return s.BufferbloatUnit != "" }

// Phase is the lifecycle state of a single measurement run.
type Phase int

const (
	PhaseAwaitingFirstData Phase = iota
	PhaseReceiving
	PhaseDone
	PhaseFailed
)

// Terminal reports whether no further transitions are allowed out of p.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingFirstData:
		return "awaiting"
	case PhaseReceiving:
		return "receiving"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
