package dict

// Option configures a Dict at construction.
type Option func(*Dict)

// WithHasher replaces the default FNV1a key hash. A nil h is ignored.
func WithHasher(h Hasher) Option {
	return func(d *Dict) {
		if h != nil {
			d.hash = h
		}
	}
}

// WithValueAlign sets the alignment of stored values. It must be a power of
// two; the default is arena.DefaultAlign.
func WithValueAlign(align int) Option {
	return func(d *Dict) {
		d.valueAlign = align
	}
}
