// Package evidence manages the markers placed in one case's scene: the
// armed placement mode, the selected marker, and the write-through to
// whichever Source holds the records.
package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	ErrNoTypeArmed     = errors.NewSentinel("no evidence type armed for placement")
	ErrInvalidType     = errors.NewSentinel("evidence type is not in the catalog")
	ErrUnknownEvidence = errors.NewSentinel("unknown evidence marker")
)

// Collection is the working set of evidence for a single case. Scene clicks
// only place markers while a catalog type is armed; stray clicks with
// nothing armed are ignored by the caller after checking Armed.
type Collection struct {
	source   Source
	caseID   int64
	placedBy string
	logger   *slog.Logger

	mu       sync.Mutex
	items    []models.Evidence
	armed    models.EvidenceType
	selected int64
	nextSeq  int64
}

// NewCollection creates the evidence working set for caseID. placedBy is
// recorded on every marker this session places.
func NewCollection(source Source, caseID int64, placedBy string, logger *slog.Logger) *Collection {
	return &Collection{
		source:   source,
		caseID:   caseID,
		placedBy: placedBy,
		logger:   logger.With("source", "evidence.Collection", "case_id", caseID),
	}
}

// Load fetches the case's markers and seeds the provisional-code counter
// past the highest code already in use, so codes from deleted markers are
// never handed out again.
func (c *Collection) Load(ctx context.Context) error {
	items, err := c.source.List(ctx, c.caseID)
	if err != nil {
		return errors.Wrap(err, "load evidence")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	for _, item := range items {
		if seq := codeSeq(item.Code); seq > c.nextSeq {
			c.nextSeq = seq
		}
	}
	return nil
}

// Items returns the loaded markers in source order.
func (c *Collection) Items() []models.Evidence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Evidence(nil), c.items...)
}

// Arm puts the collection into placement mode for the given catalog type.
func (c *Collection) Arm(evidenceType models.EvidenceType) error {
	if !models.ValidEvidenceType(evidenceType) {
		return errors.Wrap(ErrInvalidType, "arm placement",
			slog.String("type", string(evidenceType)))
	}
	c.mu.Lock()
	c.armed = evidenceType
	c.mu.Unlock()
	return nil
}

// Disarm leaves placement mode.
func (c *Collection) Disarm() {
	c.mu.Lock()
	c.armed = ""
	c.mu.Unlock()
}

// Armed returns the catalog type placement is armed with, if any.
func (c *Collection) Armed() (models.EvidenceType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed, c.armed != ""
}

// PlaceAt places a marker of the armed type at a scene position. The source
// assigns the final code and custody hash; the marker carries a provisional
// code and the pending hash only if the source echoes none back. The new
// marker becomes the selection and the type stays armed for further placing.
func (c *Collection) PlaceAt(ctx context.Context, pos models.Position, notes string) (models.Evidence, error) {
	c.mu.Lock()
	armed := c.armed
	c.mu.Unlock()
	if armed == "" {
		return models.Evidence{}, errors.Wrap(ErrNoTypeArmed, "place evidence")
	}

	item := models.Evidence{
		CaseID:    c.caseID,
		Type:      armed,
		Position:  pos,
		Notes:     notes,
		Hash:      models.PendingHash,
		CreatedBy: c.placedBy,
	}
	created, err := c.source.Add(ctx, c.caseID, item)
	if err != nil {
		return models.Evidence{}, errors.Wrap(err, "place evidence",
			slog.String("type", string(armed)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq := codeSeq(created.Code); seq > c.nextSeq {
		c.nextSeq = seq
	}
	if created.Code == "" {
		c.nextSeq++
		created.Code = fmt.Sprintf("E-%03d", c.nextSeq)
	}
	if created.Hash == "" {
		created.Hash = models.PendingHash
	}
	c.items = append(c.items, created)
	c.selected = created.ID

	c.logger.LogAttrs(ctx, slog.LevelInfo, "evidence placed",
		slog.String("evidence_code", created.Code),
		slog.String("type", string(created.Type)))
	return created, nil
}

// Select marks a loaded marker as the current selection.
func (c *Collection) Select(evidenceID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.ID == evidenceID {
			c.selected = evidenceID
			return nil
		}
	}
	return errors.Wrap(ErrUnknownEvidence, "select evidence",
		slog.Int64("evidence_id", evidenceID))
}

// Selected returns the currently selected marker, if any.
func (c *Collection) Selected() (models.Evidence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == 0 {
		return models.Evidence{}, false
	}
	for _, item := range c.items {
		if item.ID == c.selected {
			return item, true
		}
	}
	return models.Evidence{}, false
}

// UpdateNotes edits a marker's notes. The local copy is updated even when
// the source write fails, so an investigator's annotations are never lost to
// a flaky connection; the failure is logged for the next sync.
func (c *Collection) UpdateNotes(ctx context.Context, evidenceID int64, notes string) error {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID == evidenceID {
			c.items[i].Notes = notes
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return errors.Wrap(ErrUnknownEvidence, "update notes",
			slog.Int64("evidence_id", evidenceID))
	}

	patch := models.EvidencePatch{Notes: &notes}
	if err := c.source.Update(ctx, c.caseID, evidenceID, patch); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "notes kept locally, source update failed",
			slog.Int64("evidence_id", evidenceID), errors.SlogError(err))
	}
	return nil
}

// Remove deletes a marker. Removing the selected marker clears the
// selection. The freed code is not reusable: the counter never rewinds.
func (c *Collection) Remove(ctx context.Context, evidenceID int64) error {
	if err := c.source.Delete(ctx, c.caseID, evidenceID); err != nil {
		return errors.Wrap(err, "remove evidence",
			slog.Int64("evidence_id", evidenceID))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == evidenceID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if c.selected == evidenceID {
		c.selected = 0
	}
	return nil
}

// codeSeq extracts the numeric suffix of a display code like "E-007".
func codeSeq(code string) int64 {
	rest, ok := strings.CutPrefix(code, "E-")
	if !ok {
		return 0
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
