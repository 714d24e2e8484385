package txn

// State is the lifecycle position of a transaction.
type State int

const (
	StateIdle State = iota
	StateSessionStarting
	StateSessionActive
	StateConnecting
	StateReading
	StateQueryingStatus
	StateWriting
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateSessionStarting: "session_starting",
	StateSessionActive:   "session_active",
	StateConnecting:      "connecting",
	StateReading:         "reading",
	StateQueryingStatus:  "querying_status",
	StateWriting:         "writing",
	StateCompleted:       "completed",
	StateFailed:          "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the state ends the transaction.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// machine lists the non-failure moves permitted from each state.
// Failing is permitted from every non-terminal state and is not listed.
type machine map[State][]State

func (m machine) allows(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, s := range m[from] {
		if s == to {
			return true
		}
	}
	return false
}

// readMachine: a message delivered directly by the platform completes
// without tag operations; a detected tag is connected and read.
var readMachine = machine{
	StateIdle:            {StateSessionStarting},
	StateSessionStarting: {StateSessionActive, StateConnecting, StateCompleted},
	StateSessionActive:   {StateConnecting, StateCompleted},
	StateConnecting:      {StateReading},
	StateReading:         {StateCompleted},
}

var writeMachine = machine{
	StateIdle:            {StateSessionStarting},
	StateSessionStarting: {StateSessionActive, StateConnecting},
	StateSessionActive:   {StateConnecting},
	StateConnecting:      {StateQueryingStatus},
	StateQueryingStatus:  {StateWriting},
	StateWriting:         {StateCompleted},
}
