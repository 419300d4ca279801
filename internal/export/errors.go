package export

import "fmt"

// ExportError reports a failure to render or write one artifact.
type ExportError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s to %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
