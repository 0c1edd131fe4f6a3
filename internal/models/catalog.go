package models

// EvidenceType names one entry of the fixed evidence catalog.
type EvidenceType string

const (
	TypeBloodstainSpatter  EvidenceType = "bloodstain_spatter"
	TypeBloodstainPool     EvidenceType = "bloodstain_pool"
	TypeBloodstainTransfer EvidenceType = "bloodstain_transfer"
	TypeBloodstainCastOff  EvidenceType = "bloodstain_cast_off"
	TypeWeaponKnife        EvidenceType = "weapon_knife"
	TypeWeaponFirearm      EvidenceType = "weapon_firearm"
	TypeWeaponBlunt        EvidenceType = "weapon_blunt"
	TypeShellCasing        EvidenceType = "shell_casing"
	TypeFingerprint        EvidenceType = "fingerprint"
	TypeFootprint          EvidenceType = "footprint"
	TypeFiber              EvidenceType = "fiber"
	TypeDocument           EvidenceType = "document"
	TypeDrugParaphernalia  EvidenceType = "drug_paraphernalia"
	TypeCigarette          EvidenceType = "cigarette"
	TypePhotoMarker        EvidenceType = "photo_marker"
	TypeOther              EvidenceType = "other"
)

// EvidenceCategory groups catalog entries for display.
type EvidenceCategory string

const (
	CategoryBiological EvidenceCategory = "biological"
	CategoryWeapon     EvidenceCategory = "weapon"
	CategoryTrace      EvidenceCategory = "trace"
	CategoryOther      EvidenceCategory = "other"
)

// CatalogEntry describes one evidence type.
type CatalogEntry struct {
	Type        EvidenceType
	Label       string
	Description string
	Category    EvidenceCategory
}

// EvidenceCatalog is the fixed set of evidence types an investigator can
// place. Markers always carry one of these types.
var EvidenceCatalog = []CatalogEntry{
	{TypeBloodstainSpatter, "Blood Spatter", "Impact spatter pattern", CategoryBiological},
	{TypeBloodstainPool, "Blood Pool", "Pooled blood accumulation", CategoryBiological},
	{TypeBloodstainTransfer, "Blood Transfer", "Contact transfer pattern", CategoryBiological},
	{TypeBloodstainCastOff, "Cast-Off Pattern", "Swing/motion pattern", CategoryBiological},
	{TypeWeaponKnife, "Knife/Blade", "Sharp instrument", CategoryWeapon},
	{TypeWeaponFirearm, "Firearm", "Gun/projectile weapon", CategoryWeapon},
	{TypeWeaponBlunt, "Blunt Object", "Impact weapon", CategoryWeapon},
	{TypeShellCasing, "Shell Casing", "Ammunition casing", CategoryWeapon},
	{TypeFingerprint, "Fingerprint", "Latent/patent print", CategoryTrace},
	{TypeFootprint, "Footprint", "Shoe/foot impression", CategoryTrace},
	{TypeFiber, "Fiber/Hair", "Textile or hair sample", CategoryTrace},
	{TypeDocument, "Document", "Paper evidence", CategoryOther},
	{TypeDrugParaphernalia, "Drug Evidence", "Narcotics related", CategoryOther},
	{TypeCigarette, "Cigarette/Ash", "Smoking material", CategoryOther},
	{TypePhotoMarker, "Photo Marker", "Reference point", CategoryOther},
	{TypeOther, "Other", "Miscellaneous evidence", CategoryOther},
}

// ValidEvidenceType reports whether t is part of the catalog.
func ValidEvidenceType(t EvidenceType) bool {
	for _, entry := range EvidenceCatalog {
		if entry.Type == t {
			return true
		}
	}
	return false
}

// CatalogLookup returns the catalog entry for t, falling back to the
// "other" entry for unknown types the way the viewer does.
func CatalogLookup(t EvidenceType) CatalogEntry {
	var other CatalogEntry
	for _, entry := range EvidenceCatalog {
		if entry.Type == t {
			return entry
		}
		if entry.Type == TypeOther {
			other = entry
		}
	}
	return other
}
