package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./foodgram.db"

	// DefaultMediaDir is where uploaded recipe images are stored
	DefaultMediaDir = "./media"

	// DefaultMediaURL is the URL prefix media files are served under
	DefaultMediaURL = "/media/"
)
