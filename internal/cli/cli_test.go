package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bankassist/internal/config"
	"bankassist/internal/models"
	"bankassist/internal/service/assistant"
	"bankassist/internal/service/guard"
	"bankassist/internal/storage"
	"bankassist/internal/worker"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, systemInstruction string, history []models.Turn, temperature float32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func withGateway(t *testing.T, gen assistant.Generator) *int {
	t.Helper()
	built := 0
	orig := newGateway
	newGateway = func(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (assistant.Generator, error) {
		built++
		return gen, nil
	}
	t.Cleanup(func() { newGateway = orig })
	return &built
}

func isolateEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("BANKASSIST_LLM_API_KEY", "")
	t.Setenv("BANKASSIST_CONFIG", "")
}

func TestBootstrapWithoutCredentialNeverBuildsGateway(t *testing.T) {
	isolateEnv(t)
	built := withGateway(t, &stubGenerator{})

	rt, err := bootstrap(context.Background(), &rootOptions{})
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Nil(t, rt)
	assert.Zero(t, *built)
}

func TestRootCommandFailsWithoutCredential(t *testing.T) {
	isolateEnv(t)
	built := withGateway(t, &stubGenerator{})

	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader("hello\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"chat"})
	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Zero(t, *built)
	assert.Empty(t, out.String())
}

func TestBootstrapBuildsGateway(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MISTRAL_API_KEY", "k")
	gen := &stubGenerator{}
	built := withGateway(t, gen)

	rt, err := bootstrap(context.Background(), &rootOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, *built)
	assert.Same(t, gen, rt.gateway)
	assert.Equal(t, config.DefaultModel, rt.cfg.LLM.Model)
}

func TestChatSessionEndToEnd(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MISTRAL_API_KEY", "k")
	gen := &stubGenerator{reply: "Freeze the card and call us."}
	withGateway(t, gen)

	input := strings.Join([]string{
		"",
		"   ",
		"My card is lost, what do I do?",
		"What's the weather today?",
		"/history",
		"/exit",
		"never read",
	}, "\n")

	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(input))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	text := out.String()
	assert.Contains(t, text, assistant.AppTitle)
	assert.Contains(t, text, "Freeze the card and call us.")
	assert.Contains(t, text, guard.OffTopicReply())
	assert.Contains(t, text, "My card is lost, what do I do?")
	assert.Equal(t, 1, gen.calls)
}

func TestREPLCommands(t *testing.T) {
	gen := &stubGenerator{reply: "Here is how."}
	conv := storage.NewConversation()
	svc := assistant.NewService(gen, conv)

	input := strings.Join([]string{
		"/history",
		"/actions",
		"/quick 2",
		"/quick 99",
		"/quick",
		"/unknown",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, newREPL(svc, strings.NewReader(input), &out).run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "no messages yet")
	for i, qa := range assistant.QuickActions() {
		assert.Contains(t, text, qa.Label, "action %d", i)
	}
	assert.Contains(t, text, "Here is how.")
	assert.Contains(t, text, "pick a quick action between 1 and 6")
	assert.Contains(t, text, "usage: /quick <n>")
	assert.Contains(t, text, chatHelp)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 2, conv.Len())
}

func TestREPLDegradesOnModelError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	svc := assistant.NewService(gen, nil)

	var out bytes.Buffer
	require.NoError(t, newREPL(svc, strings.NewReader("How do I transfer money abroad?\n"), &out).run(context.Background()))
	assert.Contains(t, out.String(), assistant.ApologyReply)
	assert.Len(t, svc.History(), 2)
}

func TestRouterServesHealth(t *testing.T) {
	mgr := worker.NewManager(&stubGenerator{}, worker.Config{}, nil)
	t.Cleanup(mgr.Shutdown)
	router := newRouter(mgr, "mistral-small-latest", false, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mistral-small-latest")
}
