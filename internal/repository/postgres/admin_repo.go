package postgres

import (
	"context"

	"applyfollow-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type adminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) domain.AdminRepository {
	return &adminRepo{db: db}
}

// GetStats fetches dashboard statistics
func (r *adminRepo) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	stats := &domain.AdminStats{
		ApplicationsByStatus: make(map[string]int64, len(domain.ApplicationStatuses)),
	}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM contact_messages WHERE NOT replied)`,
	).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.TotalApplications, &stats.TotalCompanies, &stats.UnrepliedMessages)
	if err != nil {
		return nil, err
	}

	for _, s := range domain.ApplicationStatuses {
		stats.ApplicationsByStatus[s] = 0
	}
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ApplicationsByStatus[status] = n
	}
	return stats, rows.Err()
}
