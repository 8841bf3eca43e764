package driven

// ConfigStore provides persistent key-value configuration.
// Backed by a TOML file in the inkwell config directory.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false when absent.
	GetBool(key string) bool

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Watch starts watching the backing file and invokes fn after each
	// external change has been reloaded. The returned stop function ends
	// the watch.
	Watch(fn func()) (stop func(), err error)
}
