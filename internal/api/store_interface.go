package api

import "github.com/soaringjerry/mindscope/internal/services"

// Store is everything the router needs from persistence. The memory, SQLite and gorm stores all satisfy it.
type Store interface {
	services.AssessmentStore
	services.SubmissionStore
	services.UserStore
}

var _ Store = (*memoryStore)(nil)
