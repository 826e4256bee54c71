package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/docs"
	"github.com/educhat/backend/pkg/config"
	"github.com/educhat/backend/pkg/logger"
)

// One aggregation query per role. Each row is flattened into a single
// Indonesian-language document so the whole profile embeds as one passage.
const (
	studentQuery = `
		SELECT
			u.id,
			CONCAT('Profil Siswa: ', u.name) AS title,
			CONCAT(
				'Nama: ', u.name, '. ',
				'Kelas: ', COALESCE(u.grade, '-'), '. ',
				'Nomor HP: ', COALESCE(u.phone_number, '-'), '. ',
				'Jumlah jawaban: ', COUNT(a.id), '. ',
				'Rata-rata nilai: ', COALESCE(ROUND(AVG(a.score), 2)::text, '-'), '. ',
				'Profil belajar: ', COALESCE(lp.learning_style, '-')
			) AS content,
			u.role,
			COALESCE(u.email, ''),
			COALESCE(u.parent_id::text, '')
		FROM users u
		LEFT JOIN answers a ON a.student_id = u.id
		LEFT JOIN learning_profiles lp ON lp.student_id = u.id
		WHERE u.id = $1 AND u.role = 'student'
		GROUP BY u.id, u.name, u.grade, u.phone_number, u.role, u.email, u.parent_id, lp.learning_style
		LIMIT 50`

	teacherQuery = `
		SELECT
			u.id,
			CONCAT('Profil Guru: ', u.name) AS title,
			CONCAT(
				'Nama: ', u.name, '. ',
				'Jumlah siswa yang diajar: ', COUNT(DISTINCT ts.student_id), '. ',
				'Jumlah paket soal yang dibuat: ', COUNT(DISTINCT qp.id)
			) AS content,
			u.role,
			COALESCE(u.email, ''),
			''
		FROM users u
		LEFT JOIN teacher_students ts ON ts.teacher_id = u.id
		LEFT JOIN question_packages qp ON qp.teacher_id = u.id
		WHERE u.id = $1 AND u.role = 'teacher'
		GROUP BY u.id, u.name, u.role, u.email
		LIMIT 50`

	parentQuery = `
		SELECT
			u.id,
			CONCAT('Profil Orang Tua: ', u.name) AS title,
			CONCAT(
				'Nama: ', u.name, '. ',
				'Daftar anak: ', COALESCE(string_agg(DISTINCT c.name, ', '), '-'), '. ',
				'Rata-rata nilai anak: ', COALESCE(ROUND(AVG(a.score), 2)::text, '-')
			) AS content,
			u.role,
			COALESCE(u.email, ''),
			''
		FROM users u
		LEFT JOIN users c ON c.parent_id = u.id AND c.role = 'student'
		LEFT JOIN answers a ON a.student_id = c.id
		WHERE u.id = $1 AND u.role = 'parent'
		GROUP BY u.id, u.name, u.role, u.email
		LIMIT 50`
)

type Provider struct {
	db *sql.DB
}

func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Postgres connection pool configured",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)

	return db, nil
}

func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

func (p *Provider) FetchDocuments(ctx context.Context, userID string, role docs.Role) ([]docs.Document, error) {
	var query string
	switch role {
	case docs.RoleStudent:
		query = studentQuery
	case docs.RoleTeacher:
		query = teacherQuery
	case docs.RoleParent:
		query = parentQuery
	default:
		return nil, fmt.Errorf("%w: %q", docs.ErrInvalidRole, role)
	}

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer rows.Close()

	documents := make([]docs.Document, 0)
	for rows.Next() {
		var id, title, content, rowRole, email, parentID string
		if err := rows.Scan(&id, &title, &content, &rowRole, &email, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		metadata := map[string]string{"role": rowRole}
		if email != "" {
			metadata["email"] = email
		}
		if parentID != "" {
			metadata["parent_id"] = parentID
		}

		documents = append(documents, docs.Document{
			ID:       id,
			Title:    title,
			Content:  content,
			Metadata: metadata,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	logger.Debug("Documents fetched",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.Int("count", len(documents)),
	)

	return documents, nil
}
