package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
)

// WorkflowLauncher starts executions of one Cloud Workflows workflow.
type WorkflowLauncher struct {
	client *executions.Client
	parent string
}

// NewWorkflowLauncher targets projects/<projectID>/locations/<location>/workflows/<workflowID>.
func NewWorkflowLauncher(client *executions.Client, projectID, location, workflowID string) *WorkflowLauncher {
	return &WorkflowLauncher{
		client: client,
		parent: WorkflowName(projectID, location, workflowID),
	}
}

// WorkflowName is the resource name of a workflow.
func WorkflowName(projectID, location, workflowID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID)
}

// Launch starts an execution with argument encoded as JSON.
func (l *WorkflowLauncher) Launch(ctx context.Context, argument any) error {
	payloadBytes, err := json.Marshal(argument)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: l.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	if _, err := l.client.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return nil
}
