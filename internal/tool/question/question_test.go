package question

import (
	"context"
	"testing"
	"time"

	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedResponder answers every request from a fixed script.
func scriptedResponder(t *testing.T, requests <-chan Request, answers ...[]string) {
	t.Helper()
	go func() {
		for _, a := range answers {
			req, ok := <-requests
			if !ok {
				return
			}
			req.Reply <- a
		}
	}()
}

func TestTool_Execute(t *testing.T) {
	broker := NewBroker()
	scriptedResponder(t, broker.Attach(), []string{"Postgres", "yes"})
	questionTool := NewTool(broker)

	res, err := questionTool.Execute(context.Background(), &AskRequest{Questions: []Prompt{
		{Question: "Which database?", Options: []string{"Postgres", "SQLite"}},
		{Question: "Run migrations?"},
	}})

	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "Q: Which database?\nA: Postgres\n\nQ: Run migrations?\nA: yes", res.Content)
}

func TestTool_NoResponder(t *testing.T) {
	res, err := NewTool(NewBroker()).Execute(context.Background(), &AskRequest{Questions: []Prompt{{Question: "?"}}})

	require.NoError(t, err)
	assert.Equal(t, tool.CodeExecutionFailed, res.Code)
	assert.Contains(t, res.Error, "no interactive responder")
}

func TestTool_EmptyQuestions(t *testing.T) {
	res, err := NewTool(NewBroker()).Execute(context.Background(), &AskRequest{})

	require.NoError(t, err)
	assert.Equal(t, tool.CodeInvalidArguments, res.Code)
}

func TestBroker_AskCancelledWhileWaiting(t *testing.T) {
	broker := NewBroker()
	requests := broker.Attach()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-requests // received but never answered
		cancel()
	}()

	_, err := NewTool(broker).Execute(ctx, &AskRequest{Questions: []Prompt{{Question: "?"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBroker_AskTimesOutWithoutReceiver(t *testing.T) {
	broker := NewBroker()
	broker.Attach()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := broker.Ask(ctx, []Prompt{{Question: "?"}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBroker_Detach(t *testing.T) {
	broker := NewBroker()
	broker.Attach()
	broker.Detach()

	_, err := broker.Ask(context.Background(), []Prompt{{Question: "?"}})

	assert.ErrorIs(t, err, ErrNoResponder)
}
