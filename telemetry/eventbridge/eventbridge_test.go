// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	"github.com/golang/mock/gomock"
	ustar "github.com/hashicorp/go-ustar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockPutEventsAPI(ctrl)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	td := &ustar.TelemetryData{
		Operation:    ustar.OpCreate,
		ArchiveSize:  2048,
		EntriesAdded: 1,
		LastError:    errors.New("boom"),
	}

	client.EXPECT().
		PutEvents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *cloudwatchevents.PutEventsInput, _ ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error) {
			require.Len(t, in.Entries, 1)
			e := in.Entries[0]
			assert.Equal(t, "bus", aws.ToString(e.EventBusName))
			assert.Equal(t, "acme.backup", aws.ToString(e.Source))
			assert.Equal(t, DetailType, aws.ToString(e.DetailType))
			assert.Equal(t, now, aws.ToTime(e.Time))

			var detail map[string]any
			require.NoError(t, json.Unmarshal([]byte(aws.ToString(e.Detail)), &detail))
			assert.Equal(t, "create", detail["operation"])
			assert.Equal(t, float64(2048), detail["archive_size"])
			assert.Equal(t, "boom", detail["last_error"])
			return &cloudwatchevents.PutEventsOutput{Entries: []types.PutEventsResultEntry{{EventId: aws.String("1")}}}, nil
		})

	p := NewPublisher(client, "bus", WithSource("acme.backup"))
	p.opts.now = func() time.Time { return now }
	require.NoError(t, p.Publish(context.Background(), td))
}

func TestPublishFailures(t *testing.T) {
	cases := []struct {
		name string
		out  *cloudwatchevents.PutEventsOutput
		err  error
		want string
	}{
		{
			name: "client error",
			err:  errors.New("throttled"),
			want: "throttled",
		},
		{
			name: "rejected entry",
			out: &cloudwatchevents.PutEventsOutput{
				FailedEntryCount: 1,
				Entries: []types.PutEventsResultEntry{{
					ErrorCode:    aws.String("InternalFailure"),
					ErrorMessage: aws.String("try again"),
				}},
			},
			want: "InternalFailure: try again",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := NewMockPutEventsAPI(ctrl)
			client.EXPECT().PutEvents(gomock.Any(), gomock.Any()).Return(tc.out, tc.err)

			err := NewPublisher(client, "bus").Publish(context.Background(), &ustar.TelemetryData{Operation: ustar.OpList})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestHookSwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockPutEventsAPI(ctrl)
	client.EXPECT().PutEvents(gomock.Any(), gomock.Any()).Return(nil, errors.New("offline")).Times(1)

	hook := NewHook(client, "bus")
	assert.NotPanics(t, func() {
		hook(context.Background(), &ustar.TelemetryData{Operation: ustar.OpExtract})
	})
}
