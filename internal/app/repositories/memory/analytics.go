package memory

import (
	"context"
	"sort"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
)

// AnalyticsRepository computes the dashboard aggregates over the in-memory state
type AnalyticsRepository struct {
	db *DB
}

var _ repositories.IAnalyticsRepository = (*AnalyticsRepository)(nil)

// NewAnalyticsRepository creates an AnalyticsRepository over db
func NewAnalyticsRepository(db *DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountProjects counts every project
func (r *AnalyticsRepository) CountProjects(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.projects)), nil
}

// CountViews counts every view event
func (r *AnalyticsRepository) CountViews(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.views)), nil
}

// CountByStatus counts projects per moderation state
func (r *AnalyticsRepository) CountByStatus(_ context.Context) (map[models.ProjectStatus]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := map[models.ProjectStatus]int64{}
	for _, p := range r.db.projects {
		counts[p.Status]++
	}
	return counts, nil
}

// CountByFaculty counts projects per faculty of the owning student, ordered by faculty name
func (r *AnalyticsRepository) CountByFaculty(_ context.Context) ([]repositories.FacultyCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byName := map[string]int64{}
	for _, p := range r.db.projects {
		s, ok := r.db.users[p.StudentID]
		if !ok || s.FacultyID == nil {
			continue
		}
		f, ok := r.db.faculties[*s.FacultyID]
		if !ok {
			continue
		}
		byName[f.Name]++
	}

	counts := make([]repositories.FacultyCount, 0, len(byName))
	for name, n := range byName {
		counts = append(counts, repositories.FacultyCount{Faculty: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Faculty < counts[j].Faculty })
	return counts, nil
}

// RecentProjects returns the newest projects with their student
func (r *AnalyticsRepository) RecentProjects(_ context.Context, limit int) ([]*models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	projects := r.db.sortedProjects()
	if limit >= 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

// TechnologyLists returns every project's technology text in creation order
func (r *AnalyticsRepository) TechnologyLists(_ context.Context) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	projects := r.db.sortedProjects()
	lists := make([]string, len(projects))
	for i, p := range projects {
		lists[len(projects)-1-i] = p.Technologies
	}
	return lists, nil
}

// TopStudents returns the students owning the most projects, ties by lowest id
func (r *AnalyticsRepository) TopStudents(_ context.Context, limit int) ([]repositories.StudentCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byStudent := map[int64]int64{}
	for _, p := range r.db.projects {
		byStudent[p.StudentID]++
	}

	counts := make([]repositories.StudentCount, 0, len(byStudent))
	for id, n := range byStudent {
		c := repositories.StudentCount{StudentID: id, ProjectCount: n}
		if u, ok := r.db.users[id]; ok {
			c.StudentName = u.Name
		}
		counts = append(counts, c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].ProjectCount != counts[j].ProjectCount {
			return counts[i].ProjectCount > counts[j].ProjectCount
		}
		return counts[i].StudentID < counts[j].StudentID
	})
	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}
