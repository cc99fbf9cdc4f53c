package repository

import (
	"database/sql"
	"time"
	"worldmon/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateRunningReport commits the report row before any external call is
// made, so a crash mid-run still leaves an auditable "running" record.
func (r *ReportRepository) CreateRunningReport(runKind string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(`
		INSERT INTO monitor_report(run_kind, status)
		VALUES($1, $2)
		RETURNING id
	`, runKind, model.StatusRunning).Scan(&id)
	return id, err
}

// CompleteReport marks the report completed and inserts its sections and
// items in one transaction. The guard on status keeps terminal states final:
// a report that already completed or failed is never rewritten.
func (r *ReportRepository) CompleteReport(id uuid.UUID, summary string, fullReport []byte, sections []model.Section, items []model.Item) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE monitor_report
		SET status = $1, summary = $2, full_report = $3, updated_at = now()
		WHERE id = $4 AND status IN ($5, $6)
	`, model.StatusCompleted, summary, fullReport, id, model.StatusPending, model.StatusRunning)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	sectionIDs := make(map[string]uuid.UUID, len(sections))
	for _, s := range sections {
		var sectionID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO report_section(report_id, topic, title, summary, items, sources_count)
			VALUES($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, id, s.Topic, s.Title, s.Summary, s.Items, s.SourcesCount).Scan(&sectionID)
		if err != nil {
			return err
		}
		sectionIDs[s.Topic] = sectionID
	}

	for _, it := range items {
		sectionID, ok := sectionIDs[it.Topic]
		if !ok {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO monitor_item(section_id, source, source_url, title, content, sentiment, tags, raw_data)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		`, sectionID, it.Source, it.SourceURL, it.Title, it.Content, it.Sentiment, pq.Array(it.Tags), nullableJSON(it.Raw))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ReportRepository) FailReport(id uuid.UUID, errMsg string) error {
	_, err := r.db.Exec(`
		UPDATE monitor_report
		SET status = $1, error_message = $2, updated_at = now()
		WHERE id = $3 AND status IN ($4, $5)
	`, model.StatusFailed, errMsg, id, model.StatusPending, model.StatusRunning)
	return err
}

func (r *ReportRepository) GetReports(limit, offset int) ([]model.Report, error) {
	rows, err := r.db.Query(`
		SELECT id, created_at, updated_at, run_kind, status,
			COALESCE(summary, ''), COALESCE(error_message, '')
		FROM monitor_report
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func (r *ReportRepository) GetLatestCompleted() (*model.Report, error) {
	report, err := r.scanFullReport(r.db.QueryRow(`
		SELECT id, created_at, updated_at, run_kind, status,
			COALESCE(summary, ''), COALESCE(full_report, 'null'), COALESCE(error_message, '')
		FROM monitor_report
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, model.StatusCompleted))
	return report, err
}

func (r *ReportRepository) GetByID(id uuid.UUID) (*model.Report, error) {
	return r.scanFullReport(r.db.QueryRow(`
		SELECT id, created_at, updated_at, run_kind, status,
			COALESCE(summary, ''), COALESCE(full_report, 'null'), COALESCE(error_message, '')
		FROM monitor_report
		WHERE id = $1
	`, id))
}

func (r *ReportRepository) GetSectionsByReportID(reportID uuid.UUID) ([]model.Section, error) {
	rows, err := r.db.Query(`
		SELECT id, report_id, created_at, topic, COALESCE(title, ''), COALESCE(summary, ''), items, sources_count
		FROM report_section
		WHERE report_id = $1
		ORDER BY topic
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		err := rows.Scan(&s.ID, &s.ReportID, &s.CreatedAt, &s.Topic, &s.Title, &s.Summary, &s.Items, &s.SourcesCount)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

// SearchReports lists reports created since the given time, newest first,
// optionally restricted to reports carrying a section for one topic.
func (r *ReportRepository) SearchReports(topic string, since time.Time, limit int) ([]model.Report, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if topic != "" {
		rows, err = r.db.Query(`
			SELECT DISTINCT r.id, r.created_at, r.updated_at, r.run_kind, r.status,
				COALESCE(r.summary, ''), COALESCE(r.error_message, '')
			FROM monitor_report r
			JOIN report_section s ON s.report_id = r.id
			WHERE r.created_at >= $1 AND s.topic = $2
			ORDER BY r.created_at DESC
			LIMIT $3
		`, since, topic, limit)
	} else {
		rows, err = r.db.Query(`
			SELECT id, created_at, updated_at, run_kind, status,
				COALESCE(summary, ''), COALESCE(error_message, '')
			FROM monitor_report
			WHERE created_at >= $1
			ORDER BY created_at DESC
			LIMIT $2
		`, since, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func (r *ReportRepository) GetStats(since time.Time) (*model.ReportStats, error) {
	var stats model.ReportStats
	var latest sql.NullTime

	err := r.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			MAX(created_at) FILTER (WHERE status = $2)
		FROM monitor_report
		WHERE created_at >= $1
	`, since, model.StatusCompleted, model.StatusFailed).Scan(&stats.Total, &stats.Completed, &stats.Failed, &latest)
	if err != nil {
		return nil, err
	}

	if finished := stats.Completed + stats.Failed; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}
	if latest.Valid {
		stats.LatestCompletedAt = &latest.Time
	}

	return &stats, nil
}

func (r *ReportRepository) GetReportTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM monitor_report`).Scan(&total)
	return total, err
}

func (r *ReportRepository) scanFullReport(row *sql.Row) (*model.Report, error) {
	var rep model.Report
	err := row.Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt, &rep.RunKind, &rep.Status,
		&rep.Summary, &rep.FullReport, &rep.ErrorMessage)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &rep, nil
}

func scanReports(rows *sql.Rows) ([]model.Report, error) {
	var reports []model.Report
	for rows.Next() {
		var rep model.Report
		err := rows.Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt, &rep.RunKind, &rep.Status,
			&rep.Summary, &rep.ErrorMessage)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
