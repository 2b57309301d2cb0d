package manifest

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vitalvas/oasgen/openapi"
)

// FileSource reloads a manifest every time routes are requested, so edits
// show up in a regenerating handler without a restart. When a reload fails
// the last good routes are served and the failure is logged.
type FileSource struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last []*openapi.Route
}

// NewFileSource returns a source reading path. log may be nil.
func NewFileSource(path string, log *zap.Logger) *FileSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileSource{path: path, log: log}
}

// Routes implements openapi.RouteSource.
func (s *FileSource) Routes() []*openapi.Route {
	routes, err := Load(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.log.Error("failed to reload manifest",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return s.last
	}
	s.last = routes
	return routes
}
