package models

// MediaType represents the type of media (movie or tv series)
type MediaType string

const (
	MediaTypeMovie    MediaType = "movie"
	MediaTypeTVSeries MediaType = "tv_series"
)

// Valid reports whether t is a known media type
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTVSeries
}

// BackupStatus represents the backup state of a collection entry
type BackupStatus string

const (
	BackupNotBackedUp BackupStatus = "not_backed_up"
	BackupBackedUp    BackupStatus = "backed_up"
	BackupPending     BackupStatus = "pending"
)

// backupCycle is the order toggleBackup walks through
var backupCycle = []BackupStatus{BackupNotBackedUp, BackupBackedUp, BackupPending}

// Next returns the following status in the not_backed_up -> backed_up -> pending cycle.
// Unknown values restart the cycle at backed_up, as if they were not_backed_up.
func (s BackupStatus) Next() BackupStatus {
	for i, status := range backupCycle {
		if status == s {
			return backupCycle[(i+1)%len(backupCycle)]
		}
	}
	return BackupBackedUp
}

// Quality represents the quality tier of a copy
type Quality string

const (
	QualitySD  Quality = "SD"
	QualityHD  Quality = "HD"
	QualityFHD Quality = "FHD"
	Quality4K  Quality = "4K"
	Quality8K  Quality = "8K"
)

// Qualities lists every tier, lowest first
var Qualities = []Quality{QualitySD, QualityHD, QualityFHD, Quality4K, Quality8K}
