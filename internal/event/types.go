package event

const (
	EventPathStarted   = "path.started"
	EventPathCompleted = "path.completed"
	EventPathStopped   = "path.stopped"
	EventPathFailed    = "path.failed"
	EventAimFinished   = "aim.finished"
	EventAimCancelled  = "aim.cancelled"
)

type PathEvent struct {
	Nodes  int
	Cursor int
}

type PathFailedEvent struct {
	Start [3]int
	End   [3]int
	Err   error
}

// AimEvent reports how a target-lock session ended.
type AimEvent struct {
	Yaw      float32
	Pitch    float32
	TimedOut bool
	Elapsed  int64 // milliseconds
}
