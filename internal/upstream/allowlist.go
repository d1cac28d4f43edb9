package upstream

// writableProperties is the fixed allow-list of Thing properties the
// connector may write. Not configurable at runtime.
var writableProperties = map[string]struct{}{
	"power":          {},
	"tempsp":         {},
	"deltatempsp":    {},
	"status":         {},
	"operation_mode": {},
	"availability":   {},
	"humidity":       {},
	"temp":           {},
	"quality":        {},
}

// writablePropertyNames preserves a stable order for error messages
var writablePropertyNames = []string{
	"power", "tempsp", "deltatempsp", "status", "operation_mode",
	"availability", "humidity", "temp", "quality",
}

// IsWritable reports whether a property may be written through the connector
func IsWritable(property string) bool {
	_, ok := writableProperties[property]
	return ok
}

// WritableProperties returns the allow-list in a stable order
func WritableProperties() []string {
	out := make([]string, len(writablePropertyNames))
	copy(out, writablePropertyNames)
	return out
}
