package digest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/overview"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/sqliteutil"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func newTestEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *store.Store) {
	t.Helper()
	db, err := sqliteutil.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStore(db)
	require.NoError(t, st.Init(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := overview.NewService(st, logger)
	activities := NewActivities(st, engine, logger)

	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(DigestWorkflow, workflow.RegisterOptions{Name: digestWorkflowName})
	env.RegisterActivityWithOptions(activities.ListAccountsActivity, activity.RegisterOptions{Name: listAccountsActivityName})
	env.RegisterActivityWithOptions(activities.AccountOverviewActivity, activity.RegisterOptions{Name: overviewActivityName})
	return env, st
}

func TestDigestWorkflowEmptyFleet(t *testing.T) {
	env, _ := newTestEnv(t)

	env.ExecuteWorkflow(digestWorkflowName, DigestInput{Reason: "test"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result DigestResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Zero(t, result.Accounts)
	require.Zero(t, result.Skipped)
	require.Empty(t, result.Entries)
	require.True(t, result.TotalSpent.IsZero())
}

func TestDigestWorkflowAggregatesAccounts(t *testing.T) {
	env, st := newTestEnv(t)
	ctx := context.Background()

	seeded, err := st.CreateAccount(ctx, store.CreateAccountParams{Name: "Seeded", Email: "seeded@example.com"})
	require.NoError(t, err)
	summary, err := st.SeedAccountActivity(ctx, seeded.ID)
	require.NoError(t, err)

	empty, err := st.CreateAccount(ctx, store.CreateAccountParams{Name: "Empty", Email: "empty@example.com"})
	require.NoError(t, err)

	env.ExecuteWorkflow(digestWorkflowName, DigestInput{Reason: "test"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result DigestResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 2, result.Accounts)
	require.Zero(t, result.Skipped)
	require.Len(t, result.Entries, 2)
	require.Equal(t, summary.Orders, result.TotalOrders)

	byID := map[string]DigestEntry{}
	for _, entry := range result.Entries {
		byID[entry.AccountID] = entry
	}
	require.Equal(t, summary.Orders, byID[seeded.ID].TotalOrders)
	require.Zero(t, byID[empty.ID].TotalOrders)
	require.False(t, byID[empty.ID].Missing)
}
