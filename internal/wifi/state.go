package wifi

// State is the connectivity lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateReconnecting
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:         "Idle",
	StateConnecting:   "Connecting",
	StateConnected:    "Connected",
	StateDisconnected: "Disconnected",
	StateReconnecting: "Reconnecting",
	StateFailed:       "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Quality is the bucketed signal level derived from link RSSI.
type Quality int

const (
	QualityNone Quality = iota
	QualityWeak
	QualityFair
	QualityGood
	QualityExcellent
)

var qualityNames = map[Quality]string{
	QualityNone:      "None",
	QualityWeak:      "Weak",
	QualityFair:      "Fair",
	QualityGood:      "Good",
	QualityExcellent: "Excellent",
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return "Unknown"
}

// qualityFromRSSI buckets a dBm reading.
func qualityFromRSSI(rssi int) Quality {
	switch {
	case rssi > -50:
		return QualityExcellent
	case rssi > -60:
		return QualityGood
	case rssi > -70:
		return QualityFair
	default:
		return QualityWeak
	}
}

// StateListener observes state transitions. Multiple listeners (status
// LED, metrics, logs) can be attached without the manager depending on
// a concrete signaling mechanism.
type StateListener interface {
	OnStateChange(old, new State)
}
