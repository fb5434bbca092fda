package llm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/abhisek/counsel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAudit_RecordsEveryAttempt(t *testing.T) {
	s := openTestStore(t)
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockJSON(map[string]any{"summary": "s", "actions": []string{"a"}}),
	)
	p := WithRetry(WithAudit(mock, ProviderMock, s.EventRepo(), nil), fastRetry(), nil)

	ctx := WithPurpose(context.Background(), PurposeStudentBrief)
	_, err := p.Generate(ctx, Request{
		System:   "counselor",
		Messages: UserMessage("student S001"),
		Schema:   briefSchema(),
	})
	require.NoError(t, err)

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// newest first
	assert.True(t, events[0].Success)
	assert.Equal(t, PurposeStudentBrief, events[0].Purpose)
	assert.Equal(t, ProviderMock, events[0].Provider)
	assert.Contains(t, events[0].RequestBody, "student S001")
	assert.Contains(t, events[0].RequestBody, "[schema: test-brief]")
	assert.JSONEq(t, `{"summary":"s","actions":["a"]}`, events[0].ResponseBody)

	assert.False(t, events[1].Success)
	assert.Contains(t, events[1].ErrorMessage, "down")
}

type failingRepo struct{ store.EventRepo }

func (failingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func TestAudit_RepoFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]any{"ok": true}))
	p := WithAudit(mock, ProviderMock, failingRepo{}, nil)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
}

func TestRenderRequest(t *testing.T) {
	out := renderRequest(Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "q"}, {Role: RoleAssistant, Content: "a"}},
	})
	assert.Equal(t, "[system]\nsys\n\n[user]\nq\n\n[assistant]\na\n\n", out)
}
