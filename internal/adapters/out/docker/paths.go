package docker

import "path/filepath"

// datasetDir returns the directory a compiled dataset lives in. OSRM
// datasets are sharded into sibling files, so the whole directory gets
// mounted, not the single path.
func datasetDir(outputPath string) string {
	return filepath.Dir(outputPath)
}
