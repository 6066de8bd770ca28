package analytics

import (
	"context"
	"sync"
)

// Source is the read side of the data store. Implementations own their
// query timeouts; the engine only distinguishes success from failure.
type Source interface {
	Intervals(ctx context.Context, w Window, f Filters) ([]Interval, error)
	Tasks(ctx context.Context, projectID *int64) ([]Task, error)
	Projects(ctx context.Context) ([]Project, error)
	Users(ctx context.Context) ([]User, error)
}

// Snapshot holds one report build's worth of fetched rows. It is created
// fresh per call, owned by that call, and discarded afterwards.
type Snapshot struct {
	Intervals []Interval
	Tasks     []Task
	Projects  []Project
	Users     []User

	taskByID    map[int64]Task
	projectByID map[int64]Project
	userByID    map[int64]User
}

// LoadSnapshot runs the four source queries concurrently and joins on all
// of them before returning. Any failure aborts the load with a
// *DataFetchError; a partially loaded snapshot is never returned.
func LoadSnapshot(ctx context.Context, src Source, w Window, f Filters) (*Snapshot, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	errs := make([]error, 4)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		rows, err := src.Intervals(ctx, w, f)
		if err != nil {
			errs[0] = &DataFetchError{Source: "work_intervals", Err: err}
			return
		}
		snap.Intervals = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := src.Tasks(ctx, f.ProjectID)
		if err != nil {
			errs[1] = &DataFetchError{Source: "tasks", Err: err}
			return
		}
		snap.Tasks = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := src.Projects(ctx)
		if err != nil {
			errs[2] = &DataFetchError{Source: "projects", Err: err}
			return
		}
		snap.Projects = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := src.Users(ctx)
		if err != nil {
			errs[3] = &DataFetchError{Source: "users", Err: err}
			return
		}
		snap.Users = rows
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	snap.index()
	return snap, nil
}

func (s *Snapshot) index() {
	s.taskByID = make(map[int64]Task, len(s.Tasks))
	for _, t := range s.Tasks {
		s.taskByID[t.ID] = t
	}
	s.projectByID = make(map[int64]Project, len(s.Projects))
	for _, p := range s.Projects {
		s.projectByID[p.ID] = p
	}
	s.userByID = make(map[int64]User, len(s.Users))
	for _, u := range s.Users {
		s.userByID[u.ID] = u
	}
}

func (s *Snapshot) task(id int64) (Task, bool) {
	t, ok := s.taskByID[id]
	return t, ok
}

func (s *Snapshot) projectName(id int64) string {
	if p, ok := s.projectByID[id]; ok {
		return p.Name
	}
	return "Unknown"
}

func (s *Snapshot) userName(id int64) string {
	if u, ok := s.userByID[id]; ok {
		return u.Name
	}
	return "Unknown"
}
