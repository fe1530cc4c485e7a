package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/ucu/innovators-hub/internal/app/auth"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/repositories"
)

const (
	recentProjectsLimit = 5
	trendingTechLimit   = 5
	innovatorsLimit     = 5
)

// AnalyticsService computes the dashboard statistics on demand
type AnalyticsService interface {
	Stats(ctx context.Context, userID int64) (*dto.DashboardStats, error)
}

type analyticsServiceImpl struct {
	analytics repositories.IAnalyticsRepository
	authz     *authz.AuthorizationService
	logger    zerolog.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analytics repositories.IAnalyticsRepository, authorization *authz.AuthorizationService, logger zerolog.Logger) AnalyticsService {
	return &analyticsServiceImpl{analytics: analytics, authz: authorization, logger: logger}
}

// Stats builds the dashboard payload
func (s *analyticsServiceImpl) Stats(ctx context.Context, userID int64) (*dto.DashboardStats, error) {
	if _, _, err := s.authz.RequireFor(ctx, userID, authz.ActionDashboardView, authz.Target{}); err != nil {
		return nil, err
	}

	total, err := s.analytics.CountProjects(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.analytics.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byFaculty, err := s.analytics.CountByFaculty(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.analytics.RecentProjects(ctx, recentProjectsLimit)
	if err != nil {
		return nil, err
	}
	views, err := s.analytics.CountViews(ctx)
	if err != nil {
		return nil, err
	}
	techLists, err := s.analytics.TechnologyLists(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.analytics.TopStudents(ctx, innovatorsLimit)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		TotalProjects:     total,
		ProjectsByStatus:  []dto.StatusCount{},
		ProjectsByFaculty: make([]dto.FacultyProjects, 0, len(byFaculty)),
		RecentProjects:    make([]dto.RecentProject, 0, len(recent)),
		TotalViews:        views,
		ApprovalRate:      ApprovalRate(byStatus[models.StatusApproved], total),
		TrendingTech:      TrendingTechnologies(techLists, trendingTechLimit),
		ActiveInnovators:  make([]dto.Innovator, 0, len(top)),
	}
	for _, status := range []models.ProjectStatus{models.StatusPending, models.StatusApproved, models.StatusRejected} {
		if n, ok := byStatus[status]; ok {
			stats.ProjectsByStatus = append(stats.ProjectsByStatus, dto.StatusCount{Status: string(status), Count: n})
		}
	}
	for _, fc := range byFaculty {
		stats.ProjectsByFaculty = append(stats.ProjectsByFaculty, dto.FacultyProjects{Faculty: fc.Faculty, Count: fc.Count})
	}
	for _, p := range recent {
		rp := dto.RecentProject{
			ID:        p.ID,
			Title:     p.Title,
			Status:    string(p.Status),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
		if p.Student != nil {
			rp.StudentName = p.Student.Name
		}
		stats.RecentProjects = append(stats.RecentProjects, rp)
	}
	for _, sc := range top {
		stats.ActiveInnovators = append(stats.ActiveInnovators, dto.Innovator{StudentID: sc.StudentID, Name: sc.StudentName, ProjectCount: sc.ProjectCount})
	}

	s.logger.Debug().Int64("userID", userID).Int64("totalProjects", total).Msg("Dashboard stats computed")
	return stats, nil
}

// ApprovalRate returns approved/total as a percentage with one decimal, 0 when total is 0
func ApprovalRate(approved, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(total)*1000) / 10
}

// TrendingTechnologies counts comma-separated tags across lists and returns
// the top limit by frequency. Ties keep first-seen order.
func TrendingTechnologies(lists []string, limit int) []dto.TechCount {
	counts := map[string]int{}
	var order []string
	for _, list := range lists {
		for _, tag := range strings.Split(list, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	out := make([]dto.TechCount, 0, len(order))
	for _, name := range order {
		out = append(out, dto.TechCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
