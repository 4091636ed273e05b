package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

func TestParseProfileStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.ProfileStatus
		wantErr bool
	}{
		{name: "inactive", input: "INACTIVE", want: types.ProfileStatusInactive},
		{name: "pending", input: "PENDING_APPROVAL", want: types.ProfileStatusPendingApproval},
		{name: "active", input: "ACTIVE", want: types.ProfileStatusActive},
		{name: "lower case is rejected", input: "active", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseProfileStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}

	gt.A(t, types.AllProfileStatuses()).Length(3)
}
