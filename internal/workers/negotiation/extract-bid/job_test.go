package extractbid

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"negotiation-gateway/internal/classifier"
	"negotiation-gateway/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// ==========================
// Job Client Fake
// ==========================

// recordingGateway captures the job commands the worker sends. Calls the
// worker never makes hit the nil embedded client and panic.
type recordingGateway struct {
	pb.GatewayClient
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *recordingGateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, opts ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *recordingGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, opts ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *recordingGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, opts ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

type fakeJobClient struct {
	gateway *recordingGateway
}

func noRetry(context.Context, error) bool { return false }

func (c *fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func createJob(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "negotiation-turn",
		ElementId:          "Activity_ExtractBid",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          variables,
	}}
}

// ==========================
// Handle Tests
// ==========================

func TestHandler_Handle_CompletesWithBid(t *testing.T) {
	h := newTestHandler(t, &stubClassifier{result: offerResult(models.RoleBuyer, 0.9)})
	client := &fakeJobClient{gateway: &recordingGateway{}}

	err := h.Handle(client, createJob(1, `{"text":"Celia, 5 apples for $10","role":"buyer"}`))
	require.NoError(t, err)

	gw := client.gateway
	require.Len(t, gw.completed, 1)
	assert.Empty(t, gw.failed)
	assert.Empty(t, gw.thrown)
	assert.Equal(t, int64(1), gw.completed[0].JobKey)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(gw.completed[0].Variables), &vars))
	assert.Equal(t, true, vars["recognized"])
	assert.Equal(t, "command", vars["outcome"])
	assert.Equal(t, "Celia", vars["addressee"])
	bid := vars["bid"].(map[string]interface{})
	assert.Equal(t, "BuyOffer", bid["type"])
	assert.Equal(t, map[string]interface{}{"apples": 5.0}, bid["quantity"])
}

func TestHandler_Handle_CompletesUnrecognized(t *testing.T) {
	h := newTestHandler(t, &stubClassifier{result: offerResult(models.RoleBuyer, 0.1)})
	client := &fakeJobClient{gateway: &recordingGateway{}}

	require.NoError(t, h.Handle(client, createJob(2, `{"text":"hmm"}`)))

	require.Len(t, client.gateway.completed, 1)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(client.gateway.completed[0].Variables), &vars))
	assert.Equal(t, false, vars["recognized"])
	assert.Equal(t, "low_confidence", vars["outcome"])
	assert.NotContains(t, vars, "bid")
}

func TestHandler_Handle_Failures(t *testing.T) {
	tests := []struct {
		name        string
		classifier  *stubClassifier
		variables   string
		wantThrown  string
		wantRetries int32
	}{
		{
			name:       "variables are not JSON",
			classifier: &stubClassifier{},
			variables:  `not json`,
			wantThrown: "INVALID_MESSAGE",
		},
		{
			name:       "empty text",
			classifier: &stubClassifier{},
			variables:  `{"text":""}`,
			wantThrown: "INVALID_MESSAGE",
		},
		{
			name:        "classifier unavailable is retried",
			classifier:  &stubClassifier{err: fmt.Errorf("%w: 503", classifier.ErrClassificationFailed)},
			variables:   `{"text":"5 apples"}`,
			wantRetries: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.classifier)
			client := &fakeJobClient{gateway: &recordingGateway{}}

			err := h.Handle(client, createJob(3, tt.variables))
			assert.Error(t, err)

			gw := client.gateway
			assert.Empty(t, gw.completed)
			if tt.wantThrown != "" {
				require.Len(t, gw.thrown, 1)
				assert.Empty(t, gw.failed)
				assert.Equal(t, tt.wantThrown, gw.thrown[0].ErrorCode)
				assert.Equal(t, int64(3), gw.thrown[0].JobKey)
				return
			}
			require.Len(t, gw.failed, 1)
			assert.Empty(t, gw.thrown)
			assert.Equal(t, tt.wantRetries, gw.failed[0].Retries)
			assert.NotEmpty(t, gw.failed[0].ErrorMessage)
		})
	}
}
