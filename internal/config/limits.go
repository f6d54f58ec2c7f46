package config

const (
	// MaxContentLength is the maximum length for message content.
	// Limited to 32768 to match the backend's request body ceiling and
	// catch runaway payloads before they leave the process.
	MaxContentLength = 32768

	// MaxTopicLength is the maximum length for upload topic labels.
	// Limited to 255 to fit the backend's VARCHAR(255) column and
	// provide reasonable UX (topics should be short and descriptive).
	MaxTopicLength = 255

	// DefaultListLimit is the page size used when a message listing
	// does not name one. Matches the backend's default.
	DefaultListLimit = 100

	// MaxListLimit caps a single listing page. Larger requests indicate
	// a caller that should paginate instead.
	MaxListLimit = 1000
)
