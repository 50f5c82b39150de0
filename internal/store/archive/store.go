// Package archive persists finished deliberation sessions in SQLite.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"braintrust/internal/council"
	"braintrust/internal/gateway/provider"
	applog "braintrust/internal/logger"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrSessionNotFound is returned by Get for unknown IDs.
var ErrSessionNotFound = errors.New("session not found")

// Entry is one row of the archive listing.
type Entry struct {
	ID            string                `json:"id"`
	Question      string                `json:"question"`
	Model         string                `json:"model"`
	SummaryStatus council.SummaryStatus `json:"summary_status"`
	Advisors      int                   `json:"advisors"`
	Failed        int                   `json:"failed"`
	Usage         provider.Usage        `json:"usage"`
	StartedAt     time.Time             `json:"started_at"`
	Duration      time.Duration         `json:"duration"`
}

// Store is a gorm-backed archive on the pure-Go SQLite driver.
type Store struct {
	db *gorm.DB
}

// Open creates or migrates the archive at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("archive: path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: create dir %s: %w", dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&sessionModel{}, &advisorResultModel{}); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores the session and its advisor results in one transaction.
func (s *Store) Save(ctx context.Context, sess *council.Session) error {
	if s == nil || s.db == nil || sess == nil {
		return nil
	}
	m, err := toModel(sess)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("archive: save session %s: %w", sess.ID, err)
		}
		return nil
	})
}

// List returns the newest sessions first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var rows []sessionModel
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			ID:            r.ID,
			Question:      r.Question,
			Model:         r.Model,
			SummaryStatus: council.SummaryStatus(r.SummaryStatus),
			Advisors:      r.AdvisorCount,
			Failed:        r.FailedCount,
			StartedAt:     r.StartedAt,
			Duration:      time.Duration(r.DurationMS) * time.Millisecond,
		}
		decodeJSON(r.Usage, &e.Usage)
		out = append(out, e)
	}
	return out, nil
}

// Get loads one session with its advisor results in selection order.
func (s *Store) Get(ctx context.Context, id string) (*council.Session, error) {
	var m sessionModel
	err := s.db.WithContext(ctx).
		Preload("Advisors", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&m, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: get %s: %w", id, err)
	}
	return fromModel(m), nil
}

// AfterDeliberate archives the session. Failures are logged only.
func (s *Store) AfterDeliberate(ctx context.Context, sess *council.Session) {
	if err := s.Save(context.WithoutCancel(ctx), sess); err != nil {
		applog.Warnf("archive session %s failed: %v", sess.ID, err)
		return
	}
	applog.Debugf("archived session %s", sess.ID)
}

var _ council.SessionObserver = (*Store)(nil)

func toModel(sess *council.Session) (sessionModel, error) {
	m := sessionModel{
		ID:            sess.ID,
		Question:      sess.Question,
		Model:         sess.Model,
		SummaryStatus: string(sess.Summary.Status),
		Summary:       sess.Summary.Text,
		SummaryError:  sess.Summary.Error,
		AdvisorCount:  len(sess.Advisors),
		FailedCount:   sess.Failed(),
		StartedAt:     sess.StartedAt,
		DurationMS:    sess.Duration.Milliseconds(),
	}
	var err error
	if m.Dissent, err = encodeJSON(sess.Summary.Dissent); err != nil {
		return m, err
	}
	if m.Usage, err = encodeJSON(sess.Usage); err != nil {
		return m, err
	}
	if sess.Cost != nil {
		if m.Cost, err = encodeJSON(sess.Cost); err != nil {
			return m, err
		}
	}
	for i, r := range sess.Advisors {
		am := advisorResultModel{
			SessionID:   sess.ID,
			Position:    i,
			PersonaID:   r.PersonaID,
			DisplayName: r.DisplayName,
			Output:      r.Output,
			Scratchpad:  r.Scratchpad,
			Model:       r.Model,
			ElapsedMS:   r.Elapsed.Milliseconds(),
			Error:       r.Error,
		}
		if am.Exemplars, err = encodeJSON(r.Exemplars); err != nil {
			return m, err
		}
		if am.Usage, err = encodeJSON(r.Usage); err != nil {
			return m, err
		}
		m.Advisors = append(m.Advisors, am)
	}
	return m, nil
}

func fromModel(m sessionModel) *council.Session {
	sess := &council.Session{
		ID:        m.ID,
		Question:  m.Question,
		Model:     m.Model,
		StartedAt: m.StartedAt,
		Duration:  time.Duration(m.DurationMS) * time.Millisecond,
		Summary: council.Summary{
			Status: council.SummaryStatus(m.SummaryStatus),
			Text:   m.Summary,
			Error:  m.SummaryError,
		},
	}
	decodeJSON(m.Dissent, &sess.Summary.Dissent)
	decodeJSON(m.Usage, &sess.Usage)
	if len(m.Cost) > 0 {
		var c council.Cost
		if decodeJSON(m.Cost, &c) {
			sess.Cost = &c
		}
	}
	for _, am := range m.Advisors {
		r := council.AdvisorResult{
			PersonaID:   am.PersonaID,
			DisplayName: am.DisplayName,
			Output:      am.Output,
			Scratchpad:  am.Scratchpad,
			Model:       am.Model,
			Elapsed:     time.Duration(am.ElapsedMS) * time.Millisecond,
			Error:       am.Error,
		}
		decodeJSON(am.Exemplars, &r.Exemplars)
		decodeJSON(am.Usage, &r.Usage)
		sess.Advisors = append(sess.Advisors, r)
	}
	return sess
}

func encodeJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("archive: encode: %w", err)
	}
	return datatypes.JSON(b), nil
}

func decodeJSON(raw datatypes.JSON, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		applog.Warnf("archive: decode column: %v", err)
		return false
	}
	return true
}
