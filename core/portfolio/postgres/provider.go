// Package postgres loads portfolio facts from the site's Postgres database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jinzhu/copier"
	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	personalSQL = `SELECT name, title, location, summary, email, linkedin, github
FROM personal_info LIMIT 1`
	projectsSQL = `SELECT title, description, tech_stack, story_problem, story_decisions, story_result, live_url
FROM projects ORDER BY display_order`
	experienceSQL = `SELECT company, title, location, start_date::text AS start_date, end_date::text AS end_date, description, achievements
FROM experience ORDER BY start_date DESC`
	educationSQL = `SELECT institution, degree, location, date::text AS date
FROM education ORDER BY display_order`
	skillsSQL = `SELECT name, category::text AS category FROM skills ORDER BY category, display_order`
)

// Querier is the subset of a pgx pool the provider uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Provider struct {
	db Querier
}

func NewProvider(db Querier) *Provider {
	return &Provider{db: db}
}

type personalRow struct {
	Name     string  `db:"name"`
	Title    string  `db:"title"`
	Location string  `db:"location"`
	Summary  string  `db:"summary"`
	Email    string  `db:"email"`
	LinkedIn *string `db:"linkedin"`
	GitHub   *string `db:"github"`
}

type projectRow struct {
	Title          string   `db:"title"`
	Description    string   `db:"description"`
	TechStack      []string `db:"tech_stack"`
	StoryProblem   string   `db:"story_problem"`
	StoryDecisions string   `db:"story_decisions"`
	StoryResult    string   `db:"story_result"`
	LiveURL        *string  `db:"live_url"`
}

type experienceRow struct {
	Company      string   `db:"company"`
	Title        string   `db:"title"`
	Location     string   `db:"location"`
	StartDate    string   `db:"start_date"`
	EndDate      *string  `db:"end_date"`
	Description  []string `db:"description"`
	Achievements []string `db:"achievements"`
}

type educationRow struct {
	Institution string  `db:"institution"`
	Degree      string  `db:"degree"`
	Location    string  `db:"location"`
	Date        *string `db:"date"`
}

type skillRow struct {
	Name     string `db:"name"`
	Category string `db:"category"`
}

type rows struct {
	personal   []personalRow
	projects   []projectRow
	experience []experienceRow
	education  []educationRow
	skills     []skillRow
}

// Facts runs the section queries concurrently. Any failing query fails the
// whole load; partial facts are never returned.
func (p *Provider) Facts(ctx context.Context) (portfolio.Facts, error) {
	ctx, span := tracer.Start(ctx, "load portfolio facts")
	defer span.End()

	var loaded rows
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) { loaded.personal, err = query[personalRow](groupCtx, p.db, personalSQL); return })
	group.Go(func() (err error) { loaded.projects, err = query[projectRow](groupCtx, p.db, projectsSQL); return })
	group.Go(func() (err error) {
		loaded.experience, err = query[experienceRow](groupCtx, p.db, experienceSQL)
		return
	})
	group.Go(func() (err error) { loaded.education, err = query[educationRow](groupCtx, p.db, educationSQL); return })
	group.Go(func() (err error) { loaded.skills, err = query[skillRow](groupCtx, p.db, skillsSQL); return })

	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return portfolio.Facts{}, err
	}

	facts, err := toFacts(loaded)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return portfolio.Facts{}, err
	}

	span.SetAttributes(
		attribute.Int("portfolio.projects", len(facts.Projects)),
		attribute.Int("portfolio.experience", len(facts.Experience)),
		attribute.Int("portfolio.education", len(facts.Education)),
		attribute.Int("portfolio.skills", len(facts.Skills)),
	)
	return facts, nil
}

func query[T any](ctx context.Context, db Querier, sql string) ([]T, error) {
	result, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}

	collected, err := pgx.CollectRows(result, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio rows: %w", err)
	}
	return collected, nil
}

func toFacts(loaded rows) (portfolio.Facts, error) {
	facts := portfolio.Facts{
		Projects:   []portfolio.Project{},
		Experience: []portfolio.Experience{},
		Education:  []portfolio.Education{},
		Skills:     []portfolio.Skill{},
	}

	if len(loaded.personal) > 0 {
		facts.Personal = &portfolio.Personal{}
		if err := copier.Copy(facts.Personal, &loaded.personal[0]); err != nil {
			return portfolio.Facts{}, fmt.Errorf("failed to map personal info: %w", err)
		}
	}

	err := errors.Join(
		copier.Copy(&facts.Projects, &loaded.projects),
		copier.Copy(&facts.Experience, &loaded.experience),
		copier.Copy(&facts.Education, &loaded.education),
		copier.Copy(&facts.Skills, &loaded.skills),
	)
	if err != nil {
		return portfolio.Facts{}, fmt.Errorf("failed to map portfolio rows: %w", err)
	}

	return facts, nil
}
