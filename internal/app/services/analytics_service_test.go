package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
)

func TestTrendingTechnologies(t *testing.T) {
	tests := []struct {
		name  string
		lists []string
		want  []dto.TechCount
	}{
		{
			name:  "counts repeated tags",
			lists: []string{"C++, python, C++"},
			want:  []dto.TechCount{{Name: "C++", Count: 2}, {Name: "python", Count: 1}},
		},
		{
			name:  "ties keep first-seen order",
			lists: []string{"Go,React", "React , Go", "Rust"},
			want:  []dto.TechCount{{Name: "Go", Count: 2}, {Name: "React", Count: 2}, {Name: "Rust", Count: 1}},
		},
		{
			name:  "skips empty tags",
			lists: []string{"", " , Go,"},
			want:  []dto.TechCount{{Name: "Go", Count: 1}},
		},
		{
			name:  "top five",
			lists: []string{"a,b,c,d,e,f", "f"},
			want:  []dto.TechCount{{Name: "f", Count: 2}, {Name: "a", Count: 1}, {Name: "b", Count: 1}, {Name: "c", Count: 1}, {Name: "d", Count: 1}},
		},
		{
			name:  "nothing",
			lists: nil,
			want:  []dto.TechCount{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendingTechnologies(tt.lists, 5))
		})
	}
}

func TestApprovalRate(t *testing.T) {
	assert.Equal(t, 0.0, ApprovalRate(0, 0))
	assert.Equal(t, 50.0, ApprovalRate(1, 2))
	assert.Equal(t, 33.3, ApprovalRate(1, 3))
	assert.Equal(t, 66.7, ApprovalRate(2, 3))
	assert.Equal(t, 100.0, ApprovalRate(4, 4))
}

func TestStats_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.Analytics.Stats(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProjects)
	assert.Zero(t, stats.ApprovalRate)
	assert.Empty(t, stats.ProjectsByStatus)
	assert.Empty(t, stats.RecentProjects)
	assert.Empty(t, stats.TrendingTech)
	assert.Empty(t, stats.ActiveInnovators)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	farmer := f.user("farmer@ucu.ac.ug", models.RoleStudent, f.agriculture, f.agronomy)

	a := f.submit(f.student.ID, "A", "AI", "Python, Go")
	f.submit(f.student.ID, "B", "AI", "Go")
	c := f.submit(f.student2.ID, "C", "Web", "React")
	f.submit(farmer.ID, "D", "Agri", "Go, Rust")
	f.approve(a.ID)
	_, err := f.svc.Project.Review(f.ctx, c.ID, f.admin.ID, "rejected")
	require.NoError(t, err)
	_, _, err = f.svc.Project.Get(f.ctx, a.ID, "")
	require.NoError(t, err)
	_, _, err = f.svc.Project.Get(f.ctx, a.ID, "")
	require.NoError(t, err)

	stats, err := f.svc.Analytics.Stats(f.ctx, f.supervisor.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalProjects)
	assert.Equal(t, int64(2), stats.TotalViews)
	assert.Equal(t, 25.0, stats.ApprovalRate)
	assert.Equal(t, []dto.StatusCount{
		{Status: "pending", Count: 2},
		{Status: "approved", Count: 1},
		{Status: "rejected", Count: 1},
	}, stats.ProjectsByStatus)
	assert.Equal(t, []dto.FacultyProjects{
		{Faculty: f.agriculture.Name, Count: 1},
		{Faculty: f.engineering.Name, Count: 3},
	}, stats.ProjectsByFaculty)

	require.Len(t, stats.RecentProjects, 4)
	assert.Equal(t, "D", stats.RecentProjects[0].Title)
	assert.Equal(t, farmer.Name, stats.RecentProjects[0].StudentName)

	assert.Equal(t, []dto.TechCount{
		{Name: "Go", Count: 3},
		{Name: "Python", Count: 1},
		{Name: "React", Count: 1},
		{Name: "Rust", Count: 1},
	}, stats.TrendingTech)

	require.NotEmpty(t, stats.ActiveInnovators)
	assert.Equal(t, f.student.ID, stats.ActiveInnovators[0].StudentID)
	assert.Equal(t, int64(2), stats.ActiveInnovators[0].ProjectCount)
}
