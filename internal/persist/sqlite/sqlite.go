// Package sqlite implements the persistence adapter over a SQLite database
// file via GORM. One adapter instance is scoped to a single project.
package sqlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"proofmark/internal/attach"
	"proofmark/internal/persist"
	"proofmark/internal/scene"
)

// PinRecord is the stored form of a comment pin.
type PinRecord struct {
	ID         string `gorm:"primaryKey"`
	ProjectID  string `gorm:"index"`
	Layer      string
	X          float64
	Y          float64
	AuthorID   string
	AuthorName string
	Content    string
	PinNumber  int `gorm:"index"`
	Resolved   bool
	CreatedAt  time.Time
	Replies    []ReplyRecord `gorm:"foreignKey:PinID;constraint:OnDelete:CASCADE"`
}

// ReplyRecord is a stored pin thread reply.
type ReplyRecord struct {
	ID         string `gorm:"primaryKey"`
	PinID      string `gorm:"index"`
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

// MarkupRecord is the stored form of a vector markup. The geometry payload
// is serialized JSON, matching the markup kind.
type MarkupRecord struct {
	ID          string `gorm:"primaryKey"`
	ProjectID   string `gorm:"index"`
	Layer       string
	Kind        string
	Payload     string
	Color       string
	StrokeWidth float64
	CreatedBy   string
	CreatedAt   time.Time
	Seq         uint `gorm:"autoIncrement;uniqueIndex"`
}

// VoiceNoteRecord is a stored voice note attachment.
type VoiceNoteRecord struct {
	ID              string `gorm:"primaryKey"`
	ProjectID       string `gorm:"index"`
	PinID           string
	Layer           string
	AudioURL        string
	Transcript      string
	DurationSeconds int
	CreatedAt       time.Time
}

// WalkthroughRecord is a stored video walkthrough attachment.
type WalkthroughRecord struct {
	ID              string `gorm:"primaryKey"`
	ProjectID       string `gorm:"index"`
	Title           string
	VideoURL        string
	DurationSeconds int
	CreatedAt       time.Time
}

// PinSequence holds the next pin number per project. Numbers come from this
// row rather than MAX(pin_number) so deleting the newest pin never frees
// its number.
type PinSequence struct {
	ProjectID string `gorm:"primaryKey"`
	Next      int
}

// Adapter is a persist.Adapter backed by a SQLite file.
type Adapter struct {
	db        *gorm.DB
	projectID string

	// Guards the read-max-then-insert pin number sequence.
	pinMu sync.Mutex

	notifier persist.Notifier
}

// Open opens (creating if needed) the database at path and migrates the
// schema. All records are scoped to projectID.
func Open(path, projectID string) (*Adapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&PinRecord{},
		&ReplyRecord{},
		&MarkupRecord{},
		&VoiceNoteRecord{},
		&WalkthroughRecord{},
		&PinSequence{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Adapter{db: db, projectID: projectID}, nil
}

// CreatePin stores a pin, assigning its ID, number, and timestamp. Numbers
// are monotonic per project and never reused after deletion.
func (a *Adapter) CreatePin(p scene.Pin) (scene.Pin, error) {
	a.pinMu.Lock()
	defer a.pinMu.Unlock()

	seq := PinSequence{ProjectID: a.projectID, Next: 1}
	if err := a.db.FirstOrCreate(&seq, PinSequence{ProjectID: a.projectID}).Error; err != nil {
		return scene.Pin{}, fmt.Errorf("next pin number: %w", err)
	}
	num := seq.Next
	seq.Next++
	if err := a.db.Save(&seq).Error; err != nil {
		return scene.Pin{}, fmt.Errorf("advance pin number: %w", err)
	}

	rec := PinRecord{
		ID:         uuid.NewString(),
		ProjectID:  a.projectID,
		Layer:      string(p.Layer),
		X:          p.X,
		Y:          p.Y,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Content:    p.Content,
		PinNumber:  num,
		CreatedAt:  time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return scene.Pin{}, fmt.Errorf("create pin: %w", err)
	}

	a.notifier.Notify()
	return pinFromRecord(rec), nil
}

// SetPinResolved updates the resolved flag.
func (a *Adapter) SetPinResolved(id string, resolved bool) error {
	res := a.db.Model(&PinRecord{}).
		Where("id = ? AND project_id = ?", id, a.projectID).
		Update("resolved", resolved)
	if res.Error != nil {
		return fmt.Errorf("resolve pin %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("resolve pin %s: %w", id, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return nil
}

// AddReply appends a reply to the pin thread.
func (a *Adapter) AddReply(pinID string, r scene.Reply) (scene.Reply, error) {
	var pin PinRecord
	err := a.db.Where("id = ? AND project_id = ?", pinID, a.projectID).First(&pin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scene.Reply{}, fmt.Errorf("reply to pin %s: %w", pinID, persist.ErrNotFound)
	}
	if err != nil {
		return scene.Reply{}, fmt.Errorf("reply to pin %s: %w", pinID, err)
	}

	rec := ReplyRecord{
		ID:         uuid.NewString(),
		PinID:      pinID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Content:    r.Content,
		CreatedAt:  time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return scene.Reply{}, fmt.Errorf("create reply: %w", err)
	}

	a.notifier.Notify()
	return scene.Reply{
		ID:         rec.ID,
		AuthorID:   rec.AuthorID,
		AuthorName: rec.AuthorName,
		Content:    rec.Content,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// DeletePin removes a pin and its replies.
func (a *Adapter) DeletePin(id string) error {
	res := a.db.Where("id = ? AND project_id = ?", id, a.projectID).Delete(&PinRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete pin %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete pin %s: %w", id, persist.ErrNotFound)
	}
	a.db.Where("pin_id = ?", id).Delete(&ReplyRecord{})
	a.notifier.Notify()
	return nil
}

// CreateMarkup stores a markup, assigning its ID and timestamp.
func (a *Adapter) CreateMarkup(m scene.Markup) (scene.Markup, error) {
	payload, err := markupPayload(m)
	if err != nil {
		return scene.Markup{}, err
	}

	rec := MarkupRecord{
		ID:          uuid.NewString(),
		ProjectID:   a.projectID,
		Layer:       string(m.Layer),
		Kind:        string(m.Kind),
		Payload:     payload,
		Color:       m.Color,
		StrokeWidth: m.StrokeWidth,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return scene.Markup{}, fmt.Errorf("create markup: %w", err)
	}

	a.notifier.Notify()
	return markupFromRecord(rec)
}

// DeleteMarkup removes a markup.
func (a *Adapter) DeleteMarkup(id string) error {
	res := a.db.Where("id = ? AND project_id = ?", id, a.projectID).Delete(&MarkupRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete markup %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete markup %s: %w", id, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return nil
}

// ClearLayerMarkups removes every markup on the layer.
func (a *Adapter) ClearLayerMarkups(layer scene.LayerKey) error {
	err := a.db.Where("project_id = ? AND layer = ?", a.projectID, string(layer)).
		Delete(&MarkupRecord{}).Error
	if err != nil {
		return fmt.Errorf("clear layer %s: %w", layer, err)
	}
	a.notifier.Notify()
	return nil
}

// ReplaceScene wholesale replaces the project's pins and markups with
// records that already carry identity. Undo and redo reconcile the backend
// through this; the pin number sequence is never rewound, so numbers freed
// by an undone pin stay retired.
func (a *Adapter) ReplaceScene(pins []scene.Pin, markups []scene.Markup) error {
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var pinIDs []string
		if err := tx.Model(&PinRecord{}).
			Where("project_id = ?", a.projectID).
			Pluck("id", &pinIDs).Error; err != nil {
			return err
		}
		if len(pinIDs) > 0 {
			if err := tx.Where("pin_id IN ?", pinIDs).Delete(&ReplyRecord{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", a.projectID).Delete(&PinRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", a.projectID).Delete(&MarkupRecord{}).Error; err != nil {
			return err
		}

		for _, p := range pins {
			rec := PinRecord{
				ID:         p.ID,
				ProjectID:  a.projectID,
				Layer:      string(p.Layer),
				X:          p.X,
				Y:          p.Y,
				AuthorID:   p.AuthorID,
				AuthorName: p.AuthorName,
				Content:    p.Content,
				PinNumber:  p.PinNumber,
				Resolved:   p.Resolved,
				CreatedAt:  p.CreatedAt,
			}
			for _, r := range p.Replies {
				rec.Replies = append(rec.Replies, ReplyRecord{
					ID:         r.ID,
					PinID:      p.ID,
					AuthorID:   r.AuthorID,
					AuthorName: r.AuthorName,
					Content:    r.Content,
					CreatedAt:  r.CreatedAt,
				})
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		for _, m := range markups {
			payload, err := markupPayload(m)
			if err != nil {
				return err
			}
			rec := MarkupRecord{
				ID:          m.ID,
				ProjectID:   a.projectID,
				Layer:       string(m.Layer),
				Kind:        string(m.Kind),
				Payload:     payload,
				Color:       m.Color,
				StrokeWidth: m.StrokeWidth,
				CreatedBy:   m.CreatedBy,
				CreatedAt:   m.CreatedAt,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace scene: %w", err)
	}

	a.notifier.Notify()
	return nil
}

// ListPins returns all pins with their threads, oldest first.
func (a *Adapter) ListPins() ([]scene.Pin, error) {
	var recs []PinRecord
	err := a.db.Preload("Replies", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("project_id = ?", a.projectID).
		Order("pin_number ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}

	pins := make([]scene.Pin, len(recs))
	for i, rec := range recs {
		pins[i] = pinFromRecord(rec)
	}
	return pins, nil
}

// ListMarkups returns all markups in creation order.
func (a *Adapter) ListMarkups() ([]scene.Markup, error) {
	var recs []MarkupRecord
	err := a.db.Where("project_id = ?", a.projectID).
		Order("seq ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list markups: %w", err)
	}

	markups := make([]scene.Markup, 0, len(recs))
	for _, rec := range recs {
		m, err := markupFromRecord(rec)
		if err != nil {
			return nil, err
		}
		markups = append(markups, m)
	}
	return markups, nil
}

// CreateVoiceNote stores a voice note record.
func (a *Adapter) CreateVoiceNote(v attach.VoiceNote) (attach.VoiceNote, error) {
	rec := VoiceNoteRecord{
		ID:              uuid.NewString(),
		ProjectID:       a.projectID,
		PinID:           v.PinID,
		Layer:           string(v.Layer),
		AudioURL:        v.AudioURL,
		Transcript:      v.Transcript,
		DurationSeconds: v.DurationSeconds,
		CreatedAt:       time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return attach.VoiceNote{}, fmt.Errorf("create voice note: %w", err)
	}

	a.notifier.Notify()
	v.ID = rec.ID
	v.CreatedAt = rec.CreatedAt
	return v, nil
}

// ListVoiceNotes returns all voice notes, oldest first.
func (a *Adapter) ListVoiceNotes() ([]attach.VoiceNote, error) {
	var recs []VoiceNoteRecord
	err := a.db.Where("project_id = ?", a.projectID).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}

	notes := make([]attach.VoiceNote, len(recs))
	for i, rec := range recs {
		notes[i] = attach.VoiceNote{
			ID:              rec.ID,
			PinID:           rec.PinID,
			Layer:           scene.LayerKey(rec.Layer),
			AudioURL:        rec.AudioURL,
			Transcript:      rec.Transcript,
			DurationSeconds: rec.DurationSeconds,
			CreatedAt:       rec.CreatedAt,
		}
	}
	return notes, nil
}

// CreateWalkthrough stores a walkthrough record.
func (a *Adapter) CreateWalkthrough(w attach.Walkthrough) (attach.Walkthrough, error) {
	rec := WalkthroughRecord{
		ID:              uuid.NewString(),
		ProjectID:       a.projectID,
		Title:           w.Title,
		VideoURL:        w.VideoURL,
		DurationSeconds: w.DurationSeconds,
		CreatedAt:       time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return attach.Walkthrough{}, fmt.Errorf("create walkthrough: %w", err)
	}

	a.notifier.Notify()
	w.ID = rec.ID
	w.CreatedAt = rec.CreatedAt
	return w, nil
}

// ListWalkthroughs returns all walkthroughs, oldest first.
func (a *Adapter) ListWalkthroughs() ([]attach.Walkthrough, error) {
	var recs []WalkthroughRecord
	err := a.db.Where("project_id = ?", a.projectID).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list walkthroughs: %w", err)
	}

	walks := make([]attach.Walkthrough, len(recs))
	for i, rec := range recs {
		walks[i] = attach.Walkthrough{
			ID:              rec.ID,
			Title:           rec.Title,
			VideoURL:        rec.VideoURL,
			DurationSeconds: rec.DurationSeconds,
			CreatedAt:       rec.CreatedAt,
		}
	}
	return walks, nil
}

// Subscribe returns a coalesced change channel.
func (a *Adapter) Subscribe() <-chan struct{} {
	return a.notifier.Subscribe()
}

// Close shuts down notification and the database handle.
func (a *Adapter) Close() error {
	a.notifier.Close()
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pinFromRecord(rec PinRecord) scene.Pin {
	p := scene.Pin{
		ID:         rec.ID,
		Layer:      scene.LayerKey(rec.Layer),
		X:          rec.X,
		Y:          rec.Y,
		AuthorID:   rec.AuthorID,
		AuthorName: rec.AuthorName,
		Content:    rec.Content,
		PinNumber:  rec.PinNumber,
		Resolved:   rec.Resolved,
		CreatedAt:  rec.CreatedAt,
	}
	for _, r := range rec.Replies {
		p.Replies = append(p.Replies, scene.Reply{
			ID:         r.ID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Content:    r.Content,
			CreatedAt:  r.CreatedAt,
		})
	}
	return p
}

// markupPayload serializes the kind-specific payload to JSON.
func markupPayload(m scene.Markup) (string, error) {
	var payload interface{}
	switch m.Kind {
	case scene.KindDraw:
		payload = m.Path
	case scene.KindArrow:
		payload = m.Arrow
	case scene.KindRect:
		payload = m.Rect
	case scene.KindText:
		payload = m.Text
	case scene.KindPolygon:
		payload = m.Polygon
	default:
		return "", fmt.Errorf("markup kind %q: unknown", m.Kind)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", m.Kind, err)
	}
	return string(data), nil
}

func markupFromRecord(rec MarkupRecord) (scene.Markup, error) {
	m := scene.Markup{
		ID:          rec.ID,
		Layer:       scene.LayerKey(rec.Layer),
		Kind:        scene.Kind(rec.Kind),
		Color:       rec.Color,
		StrokeWidth: rec.StrokeWidth,
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt,
	}

	var target interface{}
	switch m.Kind {
	case scene.KindDraw:
		m.Path = &scene.PathData{}
		target = m.Path
	case scene.KindArrow:
		m.Arrow = &scene.ArrowData{}
		target = m.Arrow
	case scene.KindRect:
		m.Rect = &scene.RectData{}
		target = m.Rect
	case scene.KindText:
		m.Text = &scene.TextData{}
		target = m.Text
	case scene.KindPolygon:
		m.Polygon = &scene.PolygonData{}
		target = m.Polygon
	default:
		return scene.Markup{}, fmt.Errorf("markup %s: unknown kind %q", rec.ID, rec.Kind)
	}

	if err := json.Unmarshal([]byte(rec.Payload), target); err != nil {
		return scene.Markup{}, fmt.Errorf("decode %s payload: %w", rec.Kind, err)
	}
	return m, nil
}
