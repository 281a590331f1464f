package roster

// Option configures an Importer.
type Option func(*Importer)

// WithSelector picks the table to read, e.g. "table#roster".
func WithSelector(sel string) Option {
	return func(im *Importer) {
		if sel != "" {
			im.selector = sel
		}
	}
}

// WithDefaultGradYear fills the grad year of rows that carry none.
func WithDefaultGradYear(year int) Option {
	return func(im *Importer) { im.defaultGrad = year }
}

// WithVerified marks every imported candidate as verified.
func WithVerified(v bool) Option {
	return func(im *Importer) { im.verified = v }
}
