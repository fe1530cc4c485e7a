package dto

// StatusCount is a project count for one moderation status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// FacultyProjects is a project count for one faculty
type FacultyProjects struct {
	Faculty string `json:"faculty"`
	Count   int64  `json:"count"`
}

// RecentProject is a compact entry of the recent projects list
type RecentProject struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	StudentName string `json:"studentName"`
	CreatedAt   string `json:"createdAt"`
}

// TechCount is the number of projects mentioning a technology
type TechCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Innovator is a student ranked by project count
type Innovator struct {
	StudentID    int64  `json:"studentId"`
	Name         string `json:"name"`
	ProjectCount int64  `json:"projectCount"`
}

// DashboardStats is the analytics dashboard payload
type DashboardStats struct {
	TotalProjects     int64             `json:"totalProjects"`
	ProjectsByStatus  []StatusCount     `json:"projectsByStatus"`
	ProjectsByFaculty []FacultyProjects `json:"projectsByFaculty"`
	RecentProjects    []RecentProject   `json:"recentProjects"`
	TotalViews        int64             `json:"totalViews"`
	ApprovalRate      float64           `json:"approvalRate"`
	TrendingTech      []TechCount       `json:"trendingTech"`
	ActiveInnovators  []Innovator       `json:"activeInnovators"`
}
