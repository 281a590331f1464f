package dedupe

// Option applies a configuration option to the in-memory key store.
type Option func(*inMemoryKeys)

// WithMaxSize caps the number of remembered keys. The oldest completed key is
// evicted first. maxSize <= 0 disables the cap.
func WithMaxSize(maxSize int) Option {
	return func(k *inMemoryKeys) {
		k.maxSize = maxSize
	}
}
