package env

// EndReason indicates how an episode ended
type EndReason int

const (
	EndNone    EndReason = iota
	EndCrash             // hit an obstacle
	EndTimeout           // step cap reached
)

func (e EndReason) String() string {
	switch e {
	case EndNone:
		return "none"
	case EndCrash:
		return "crash"
	case EndTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// EpisodeStats captures the outcome of a single episode
type EpisodeStats struct {
	Score    float64   // floored, scaled distance
	Steps    int       // frames played
	Distance float64   // raw distance run
	End      EndReason // how the episode ended
}
