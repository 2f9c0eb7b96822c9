package entity

import "time"

// Job status values. A job is created as queued; the dispatcher writes the
// terminal status after fan-out completes.
const (
	JobStatusQueued    = "queued"
	JobStatusProcessed = "processed"
	JobStatusFailed    = "failed"
)

// AudienceTypeUser is the only supported audience type: one job targets
// exactly one user. Broadcast audiences would be modeled as many jobs.
const AudienceTypeUser = "user"

// Audience identifies who a notification job is for.
type Audience struct {
	Type string
	UID  string
}

// NotificationJob is one logical notification intent for one user,
// independent of how many channels ultimately deliver it.
// Jobs are created once by intake and never mutated afterwards except for
// the terminal status written by the dispatcher. They are never deleted.
type NotificationJob struct {
	ID               string
	TemplateID       string
	Audience         Audience
	Data             map[string]string
	RequiredChannels []Channel // nil or empty = all channels
	Topic            string
	Status           string
	CreatedAt        time.Time
}

// Validate checks the invariants required before a job may be persisted.
func (j *NotificationJob) Validate() error {
	if j.TemplateID == "" {
		return &ValidationError{Field: "templateId", Message: "templateId is required"}
	}
	if j.Audience.Type != AudienceTypeUser {
		return &ValidationError{Field: "audience.type", Message: "audience type must be 'user'"}
	}
	if j.Audience.UID == "" {
		return &ValidationError{Field: "audience.uid", Message: "audience uid is required"}
	}
	for _, ch := range j.RequiredChannels {
		if !ch.IsValid() {
			return &ValidationError{Field: "requiredChannels", Message: "unknown channel: " + string(ch)}
		}
	}
	return nil
}

// CandidateChannels returns the channel set the orchestrator starts from:
// the job's requiredChannels when present, otherwise all six.
func (j *NotificationJob) CandidateChannels() []Channel {
	if len(j.RequiredChannels) == 0 {
		return AllChannels()
	}
	return j.RequiredChannels
}
