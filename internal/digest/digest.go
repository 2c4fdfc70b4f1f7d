// Package digest runs fleet-wide overview reports through Temporal. Each
// run walks every account and recomputes its overview from the live store;
// the digest is a batch report, not a cache.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/overview"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

const (
	digestTaskQueue          = "overview-digest-task-queue"
	digestWorkflowName       = "digest.accounts"
	listAccountsActivityName = "digest.list.accounts"
	overviewActivityName     = "digest.account.overview"
)

// DigestInput parametrizes one digest run.
type DigestInput struct {
	Reason string `json:"reason,omitempty"`
}

// DigestEntry summarizes one account's overview.
type DigestEntry struct {
	AccountID       string          `json:"account_id"`
	Missing         bool            `json:"missing,omitempty"`
	TotalOrders     int             `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Activities      int             `json:"activities"`
	Deliveries      int             `json:"deliveries"`
	Recommendations int             `json:"recommendations"`
}

// DigestResult aggregates a full run.
type DigestResult struct {
	WorkflowID  string          `json:"workflow_id,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Accounts    int             `json:"accounts"`
	Skipped     int             `json:"skipped"`
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	Entries     []DigestEntry   `json:"entries"`
}

// Activities hosts the activity implementations backed by the store and the
// overview engine.
type Activities struct {
	store  *store.Store
	engine *overview.Service
	logger *slog.Logger
}

func NewActivities(st *store.Store, engine *overview.Service, logger *slog.Logger) *Activities {
	return &Activities{store: st, engine: engine, logger: logger}
}

// ListAccountsActivity returns every account id known to the store.
func (a *Activities) ListAccountsActivity(ctx context.Context) ([]string, error) {
	accounts, err := a.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	return ids, nil
}

// AccountOverviewActivity computes one account's overview and condenses it
// into a digest entry. A nil overview (account vanished mid-run or fetch
// failed) is reported as a missing entry rather than an activity error.
func (a *Activities) AccountOverviewActivity(ctx context.Context, accountID string) (DigestEntry, error) {
	result := a.engine.Compose(ctx, accountID)
	if result == nil {
		a.logger.Warn("digest skipping account", "account_id", accountID)
		return DigestEntry{AccountID: accountID, Missing: true, TotalSpent: decimal.Zero}, nil
	}
	return DigestEntry{
		AccountID:       accountID,
		TotalOrders:     result.Stats.TotalOrders,
		TotalSpent:      result.Stats.TotalSpent,
		Activities:      len(result.RecentActivities),
		Deliveries:      len(result.UpcomingDeliveries),
		Recommendations: len(result.RecommendedProducts),
	}, nil
}

// DigestWorkflow lists accounts and computes each overview through
// retryable activities, aggregating the fleet totals.
func DigestWorkflow(ctx workflow.Context, input DigestInput) (DigestResult, error) {
	logger := workflow.GetLogger(ctx)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    5,
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	result := DigestResult{StartedAt: workflow.Now(ctx), TotalSpent: decimal.Zero}
	logger.Info("digest workflow started", "reason", input.Reason)

	var accountIDs []string
	if err := workflow.ExecuteActivity(ctx, listAccountsActivityName).Get(ctx, &accountIDs); err != nil {
		logger.Error("list accounts activity failed", "error", err)
		return result, err
	}

	for _, accountID := range accountIDs {
		var entry DigestEntry
		if err := workflow.ExecuteActivity(ctx, overviewActivityName, accountID).Get(ctx, &entry); err != nil {
			logger.Error("overview activity failed", "account_id", accountID, "error", err)
			return result, err
		}
		result.Entries = append(result.Entries, entry)
		if entry.Missing {
			result.Skipped++
			continue
		}
		result.Accounts++
		result.TotalOrders += entry.TotalOrders
		result.TotalSpent = result.TotalSpent.Add(entry.TotalSpent)
	}

	result.CompletedAt = workflow.Now(ctx)
	logger.Info("digest workflow finished", "accounts", result.Accounts, "skipped", result.Skipped, "reason", input.Reason)
	return result, nil
}

// RegisterDigestWorker wires up the Temporal worker consuming the digest
// task queue.
func RegisterDigestWorker(c client.Client, activities *Activities) temporalworker.Worker {
	w := temporalworker.New(c, digestTaskQueue, temporalworker.Options{})
	w.RegisterWorkflowWithOptions(DigestWorkflow, workflow.RegisterOptions{Name: digestWorkflowName})
	w.RegisterActivityWithOptions(activities.ListAccountsActivity, activity.RegisterOptions{Name: listAccountsActivityName})
	w.RegisterActivityWithOptions(activities.AccountOverviewActivity, activity.RegisterOptions{Name: overviewActivityName})
	return w
}

// Orchestrator starts digest workflows through the Temporal client.
type Orchestrator struct {
	client client.Client
	logger *slog.Logger
}

func NewOrchestrator(c client.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{client: c, logger: logger.With("component", "digest.orchestrator")}
}

// RunDigest executes a digest and waits for the result.
func (o *Orchestrator) RunDigest(ctx context.Context, input DigestInput) (DigestResult, error) {
	workflowID := fmt.Sprintf("digest-%d", time.Now().UnixNano())
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                digestTaskQueue,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionTimeout: 30 * time.Minute,
	}
	we, err := o.client.ExecuteWorkflow(ctx, options, DigestWorkflow, input)
	if err != nil {
		o.logger.Error("start digest failed", "error", err)
		return DigestResult{}, err
	}
	var result DigestResult
	if err := we.Get(ctx, &result); err != nil {
		o.logger.Error("wait digest failed", "workflow_id", we.GetID(), "error", err)
		result.WorkflowID = we.GetID()
		result.RunID = we.GetRunID()
		return result, err
	}
	result.WorkflowID = we.GetID()
	result.RunID = we.GetRunID()
	o.logger.Info("digest completed", "workflow_id", result.WorkflowID, "accounts", result.Accounts, "skipped", result.Skipped)
	return result, nil
}

// TaskQueue exposes the queue name for metrics and tests.
func TaskQueue() string {
	return digestTaskQueue
}
