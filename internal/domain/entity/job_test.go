package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobValidate(t *testing.T) {
	valid := func() *NotificationJob {
		return &NotificationJob{
			TemplateID: "booking.confirmed",
			Audience:   Audience{Type: AudienceTypeUser, UID: "U1"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*NotificationJob)
		wantErr bool
	}{
		{name: "valid job", mutate: func(*NotificationJob) {}, wantErr: false},
		{name: "missing templateId", mutate: func(j *NotificationJob) { j.TemplateID = "" }, wantErr: true},
		{name: "missing uid", mutate: func(j *NotificationJob) { j.Audience.UID = "" }, wantErr: true},
		{name: "wrong audience type", mutate: func(j *NotificationJob) { j.Audience.Type = "broadcast" }, wantErr: true},
		{name: "unknown required channel", mutate: func(j *NotificationJob) { j.RequiredChannels = []Channel{"fax"} }, wantErr: true},
		{name: "valid required channels", mutate: func(j *NotificationJob) { j.RequiredChannels = []Channel{ChannelInApp, ChannelSMS} }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := valid()
			tt.mutate(j)
			err := j.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandidateChannels(t *testing.T) {
	j := &NotificationJob{}
	assert.Equal(t, AllChannels(), j.CandidateChannels(), "absent requiredChannels means the full set")

	j.RequiredChannels = []Channel{ChannelInApp, ChannelSMS}
	assert.Equal(t, []Channel{ChannelInApp, ChannelSMS}, j.CandidateChannels())
}
