package mdpreview

// Option configures a Renderer.
type Option func(*Renderer)

// WithFencedTags sets the fence languages extracted for client-side
// rendering, replacing the defaults. Pass no tags to disable extraction.
func WithFencedTags(tags ...string) Option {
	copied := make([]string, len(tags))
	copy(copied, tags)
	return func(r *Renderer) {
		r.cfg.fencedTags = copied
	}
}

// WithoutImageEmbedding disables base64 inlining of local images. Image
// sources are left as written.
func WithoutImageEmbedding() Option {
	return func(r *Renderer) {
		r.cfg.embedImages = false
	}
}

// WithMaxImageSize caps the size of images inlined into the preview.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxImageSize(n int64) Option {
	if n <= 0 {
		panic("mdpreview: WithMaxImageSize must be positive")
	}
	return func(r *Renderer) {
		r.cfg.maxImageSize = n
	}
}
