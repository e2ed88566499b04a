package roboguice

// Platform service lookup keys.
const (
	LocationService       LookupKey = "location"
	WindowService         LookupKey = "window"
	ActivityService       LookupKey = "activity"
	PowerService          LookupKey = "power"
	AlarmService          LookupKey = "alarm"
	NotificationService   LookupKey = "notification"
	KeyguardService       LookupKey = "keyguard"
	VibratorService       LookupKey = "vibrator"
	ConnectivityService   LookupKey = "connectivity"
	WifiService           LookupKey = "wifi"
	InputMethodService    LookupKey = "input_method"
	SensorService         LookupKey = "sensor"
	TelephonyService      LookupKey = "phone"
	AudioService          LookupKey = "audio"
	LayoutInflaterService LookupKey = "layout_inflater"
	SearchService         LookupKey = "search"
)

// LookupRegistry maps service types to platform lookup keys. It is immutable
// once constructed.
type LookupRegistry struct {
	keys map[TypeID]LookupKey
}

// NewLookupRegistry copies entries into a new registry.
func NewLookupRegistry(entries map[TypeID]LookupKey) *LookupRegistry {
	keys := make(map[TypeID]LookupKey, len(entries))
	for id, key := range entries {
		keys[id] = key
	}
	return &LookupRegistry{keys: keys}
}

// Key returns the lookup key for id.
func (r *LookupRegistry) Key(id TypeID) (LookupKey, bool) {
	if r == nil {
		return "", false
	}
	key, ok := r.keys[id]
	return key, ok
}

// With returns a new registry holding r's entries plus entries; entries win.
func (r *LookupRegistry) With(entries map[TypeID]LookupKey) *LookupRegistry {
	merged := make(map[TypeID]LookupKey, r.Len()+len(entries))
	if r != nil {
		for id, key := range r.keys {
			merged[id] = key
		}
	}
	for id, key := range entries {
		merged[id] = key
	}
	return &LookupRegistry{keys: merged}
}

func (r *LookupRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
