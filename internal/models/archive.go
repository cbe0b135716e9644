package models

import "time"

// ArchivedJob is a Job that was dismissed by the user, plus archive metadata.
// At most one archive row exists per job id.
type ArchivedJob struct {
	Job
	ArchivedAt    time.Time `json:"archivedAt"`
	ArchiveReason string    `json:"archiveReason,omitempty"`
}

type CompanyArchiveCount struct {
	Company string `db:"company" json:"company"`
	Count   int    `db:"count" json:"count"`
}

// ArchiveStatistics aggregate the archived_jobs table.
type ArchiveStatistics struct {
	TotalArchived         int                   `json:"totalArchived"`
	ArchivedThisMonth     int                   `json:"archivedThisMonth"`
	MostArchivedCompanies []CompanyArchiveCount `json:"mostArchivedCompanies"`
}
