package store

import (
	"context"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

// demoEvidence is the walkthrough evidence set attached to the first demo case.
var demoEvidence = []struct {
	evidenceType models.EvidenceType
	pos          models.Position
	notes        string
}{
	{models.TypeBloodstainSpatter, models.Position{X: 2.5, Y: 0.1, Z: -1.2},
		"Medium velocity impact spatter consistent with blunt force"},
	{models.TypeWeaponKnife, models.Position{X: -1.8, Y: 0, Z: 0.5},
		"Partial fingerprints recovered, blood trace on blade"},
	{models.TypeFootprint, models.Position{X: 0, Y: 0, Z: 2.1},
		"Pattern consistent with work boots, leading to exit"},
	{models.TypeBloodstainPool, models.Position{X: 1.5, Y: 0, Z: -0.5},
		"Primary scene, victim location at time of injury"},
	{models.TypeFingerprint, models.Position{X: -2.5, Y: 1.2, Z: -2.0},
		"Clear ridge detail, possible suspect print"},
}

// Seed populates an empty store with the two demo cases so offline mode has
// something to show. A store that already has cases is left alone.
func (s *Store) Seed(ctx context.Context) error {
	existing, err := s.Cases.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list cases before seeding")
	}
	if len(existing) > 0 {
		return nil
	}

	first, err := s.Cases.Create(ctx, models.CaseDraft{
		Location:     "Arkham City, 1st Floor Master Bedroom",
		Date:         "2024-12-08",
		Investigator: "Demo Investigator",
	})
	if err != nil {
		return errors.Wrap(err, "seed first demo case")
	}
	// The first demo case ships fully analyzed.
	first.Status = models.StatusAnalyzed
	if _, err = s.Cases.Upsert(ctx, first); err != nil {
		return errors.Wrap(err, "mark demo case analyzed")
	}
	if _, err = s.Cases.Create(ctx, models.CaseDraft{
		Location:     "Gotham Heights, Warehouse District",
		Date:         "2024-12-15",
		Investigator: "Demo Investigator",
	}); err != nil {
		return errors.Wrap(err, "seed second demo case")
	}

	for _, item := range demoEvidence {
		if _, err = s.Evidence.Add(ctx, first.ID, item.evidenceType, item.pos, item.notes, "Demo Investigator"); err != nil {
			return errors.Wrap(err, "seed demo evidence")
		}
	}
	return nil
}
