package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create stores a project together with its slides
func (r *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	outlines, err := json.Marshal(proj.Outlines)
	if err != nil {
		return fmt.Errorf("failed to encode outlines: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, tenant_id, title, prompt, outlines, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		proj.ID,
		tenantID,
		proj.Title,
		proj.Prompt,
		string(outlines),
		nullableJSON(proj.Content),
		proj.CreatedAt,
		proj.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "create project")
	}

	if err := insertSlides(ctx, tx, proj.ID, proj.Slides); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a project and its ordered slides
func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	query := `
		SELECT id, tenant_id, title, prompt, outlines, content, created_at, updated_at
		FROM projects
		WHERE id = ? AND tenant_id = ?
	`

	var proj project.Project
	var outlines string
	var content sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&proj.ID,
		&proj.TenantID,
		&proj.Title,
		&proj.Prompt,
		&outlines,
		&content,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := json.Unmarshal([]byte(outlines), &proj.Outlines); err != nil {
		return nil, fmt.Errorf("failed to decode outlines: %w", err)
	}
	if proj.Outlines == nil {
		proj.Outlines = []outline.OutlineCard{}
	}
	if content.Valid && content.String != "" {
		proj.Content = json.RawMessage(content.String)
	}

	slides, err := r.slides(ctx, proj.ID)
	if err != nil {
		return nil, err
	}
	proj.Slides = slides
	return &proj, nil
}

// List returns all projects for a tenant with summary information
func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	query := `
		SELECT
			p.id,
			p.title,
			p.outlines,
			p.created_at,
			p.updated_at,
			COUNT(s.id) as slide_count
		FROM projects p
		LEFT JOIN slides s ON s.project_id = p.id
		WHERE p.tenant_id = ?
		GROUP BY p.id, p.title, p.outlines, p.created_at, p.updated_at
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.ProjectSummary{}
	for rows.Next() {
		var summary project.ProjectSummary
		var outlines string
		err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&outlines,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.SlideCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		var cards []outline.OutlineCard
		if err := json.Unmarshal([]byte(outlines), &cards); err != nil {
			return nil, fmt.Errorf("failed to decode outlines: %w", err)
		}
		summary.OutlineCount = len(cards)
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// SaveContent overwrites the serialized document of a project
func (r *ProjectRepository) SaveContent(ctx context.Context, tenantID, id string, content []byte) error {
	query := `
		UPDATE projects
		SET content = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, nullableJSON(content), time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to save content: %w", err)
	}
	return requireAffected(result)
}

// ReplaceSlides swaps the full slide list of a project
func (r *ProjectRepository) ReplaceSlides(ctx context.Context, tenantID, id string, slides []project.Slide) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET updated_at = ? WHERE id = ? AND tenant_id = ?`,
		time.Now().UTC(), id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM slides WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear slides: %w", err)
	}
	if err := insertSlides(ctx, tx, id, slides); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ProjectRepository) slides(ctx context.Context, projectID string) ([]project.Slide, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, body, position
		FROM slides
		WHERE project_id = ?
		ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	defer rows.Close()

	slides := []project.Slide{}
	for rows.Next() {
		var slide project.Slide
		var body sql.NullString
		if err := rows.Scan(&slide.ID, &slide.Title, &body, &slide.Order); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		if body.Valid && body.String != "" {
			slide.Body = json.RawMessage(body.String)
		}
		slides = append(slides, slide)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slide rows: %w", err)
	}
	return slides, nil
}

func insertSlides(ctx context.Context, tx *sql.Tx, projectID string, slides []project.Slide) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO slides (project_id, id, title, body, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare slide insert: %w", err)
	}
	defer stmt.Close()

	for _, slide := range slides {
		if _, err := stmt.ExecContext(ctx, projectID, slide.ID, slide.Title, nullableJSON(slide.Body), slide.Order); err != nil {
			return writeError(err, "insert slide "+slide.ID)
		}
	}
	return nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
