package cmd

// Config carries everything the service reads from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// GraphDir receives the shared graph document; WorkspaceDir holds one
	// subdirectory per variant for compilation.
	GraphDir     string
	WorkspaceDir string

	// OsrmBinDir locates the compiler binaries; empty means $PATH.
	// StageTimeout is a Go duration string bounding each compiler stage.
	OsrmBinDir   string
	StageTimeout string

	// Variants is the comma-separated variant matrix, e.g.
	// "motorcycle,van,van:rating:traffic".
	Variants string

	// GenerationSchedule is the cron expression of the nightly run.
	GenerationSchedule string

	EngineImage      string
	EngineBasePort   string
	EngineProbeQuery string
}
