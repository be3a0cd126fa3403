package scanner

// FileEvents is the narrow file-watch boundary the scanner consumes. A
// concrete watcher (fsnotify, a test fake) implements it; the scanner has no
// compile-time dependency on any particular transport. Each callback fires
// at-least-once per actual change with a vault-relative path.
type FileEvents interface {
	// Subscribe registers the handler and returns a disposer. The disposer
	// is safe to call more than once.
	Subscribe(h EventHandler) (dispose func())
}

// EventHandler receives raw file change notifications. Nil callbacks are
// skipped by implementations.
type EventHandler struct {
	OnModified func(path string)
	OnCreated  func(path string)
	OnDeleted  func(path string)
	OnRenamed  func(oldPath, newPath string)
}
