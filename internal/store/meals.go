package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/macrotrend/internal/trend"
)

// AddMeal stores m, assigning an id and timestamps when they are missing.
func (s *Store) AddMeal(m Meal) (*Meal, error) {
	if m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatG < 0 {
		return nil, fmt.Errorf("add meal: %w: negative macro", trend.ErrInvalidValue)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.EatenAt.IsZero() {
		m.EatenAt = now
	}
	_, err := s.db.Exec(
		`INSERT INTO meals (id, eaten_at, description, calories, protein_g, carbs_g, fat_g, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.EatenAt.UTC().Format(time.RFC3339), m.Description,
		m.Calories, m.ProteinG, m.CarbsG, m.FatG,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert meal: %w", err)
	}
	return s.GetMeal(m.ID)
}

func (s *Store) GetMeal(id string) (*Meal, error) {
	m := &Meal{}
	var eatenAt, createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, eaten_at, description, calories, protein_g, carbs_g, fat_g, created_at, updated_at
		 FROM meals WHERE id = ?`, id,
	).Scan(&m.ID, &eatenAt, &m.Description, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get meal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get meal %s: %w", id, err)
	}
	m.EatenAt, _ = time.Parse(time.RFC3339, eatenAt)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return m, nil
}

func (s *Store) ListMeals(f MealFilter) ([]Meal, error) {
	query := `SELECT id, eaten_at, description, calories, protein_g, carbs_g, fat_g, created_at, updated_at FROM meals WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND eaten_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND eaten_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY eaten_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var m Meal
		var eatenAt, createdAt, updatedAt string
		if err := rows.Scan(&m.ID, &eatenAt, &m.Description, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		m.EatenAt, _ = time.Parse(time.RFC3339, eatenAt)
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *Store) DeleteMeal(id string) error {
	res, err := s.db.Exec(`DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete meal %s: %w", id, ErrNotFound)
	}
	return nil
}

// DailyTotals sums metric per calendar day of eaten_at within [from, to) and
// returns one series entry per day. Days whose total is zero are left out, since
// a day with no logged food is a gap rather than a measurement of zero.
func (s *Store) DailyTotals(metric Metric, from, to time.Time) ([]trend.Entry, error) {
	query := fmt.Sprintf(`
		SELECT date(eaten_at) AS day, SUM(%s), MAX(updated_at)
		FROM meals
		WHERE eaten_at >= ? AND eaten_at < ?
		GROUP BY day
		HAVING SUM(%s) > 0
		ORDER BY day`, metric.column(), metric.column())

	rows, err := s.db.Query(query, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var entries []trend.Entry
	for rows.Next() {
		var day, updatedAt string
		var total float64
		if err := rows.Scan(&day, &total, &updatedAt); err != nil {
			return nil, err
		}
		d, err := trend.ParseDay(day)
		if err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339, updatedAt)
		entries = append(entries, trend.Entry{
			ID:        string(metric) + ":" + day,
			Day:       d,
			Value:     total,
			UpdatedAt: ts,
		})
	}
	return entries, rows.Err()
}

// NutritionLog exposes one metric's daily totals as a read-only trend.Persistence.
// Totals are derived from meals, so Save is rejected.
type NutritionLog struct {
	s      *Store
	metric Metric
	from   time.Time
	to     time.Time
}

// NutritionLog covers every meal eaten before to and within the two-year lookback.
func (s *Store) NutritionLog(metric Metric, to time.Time) *NutritionLog {
	return &NutritionLog{s: s, metric: metric, from: to.AddDate(-2, 0, -1), to: to}
}

var _ trend.Persistence = (*NutritionLog)(nil)

var errDerivedSeries = errors.New("nutrition totals are derived from meals")

func (n *NutritionLog) Load(context.Context) ([]trend.Entry, error) {
	return n.s.DailyTotals(n.metric, n.from, n.to)
}

func (n *NutritionLog) Save(context.Context, []trend.Entry) error {
	return fmt.Errorf("save %s totals: %w", n.metric, errDerivedSeries)
}
