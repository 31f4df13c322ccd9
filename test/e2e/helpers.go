//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/onboardai/internal/api/handlers"
	"github.com/cloo-solutions/onboardai/internal/composio"
	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/jobs"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/repository"
	"github.com/cloo-solutions/onboardai/internal/server"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/storage"
	"github.com/cloo-solutions/onboardai/internal/testutil"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"
)

const (
	adminToken   = "e2e-admin-token"
	releaseNote  = "Velora ships weekly. Releases go out on Thursdays."
	competitorQ  = "Zendesk pricing"
	briefPayload = `{"summary":["Velora ships weekly"],"product":["Thursday releases"],"sales":[],"company":["Velora"],"onboarding":["Read the release notes"],"risks":[]}`
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	RustFSC   *testutil.RustFSContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	Composio  *httptest.Server
	YouCom    *httptest.Server
	BinaryDir string

	// composioCalls counts tool executions seen by the fake toolkit API.
	composioCalls atomic.Int32
}

// SetupE2EEnv starts the containers, the fake upstream APIs and the server.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	env := &E2ETestEnv{T: t, Ctx: ctx}
	env.PostgresC = testutil.NewPostgresContainer(ctx, t)
	env.RustFSC = testutil.NewRustFSContainer(ctx, t)
	env.Pool = testutil.NewTestPool(ctx, t, env.PostgresC, "../../migrations")
	env.Composio = httptest.NewServer(http.HandlerFunc(env.serveComposio))
	env.YouCom = httptest.NewServer(http.HandlerFunc(serveYouCom))

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        env.RustFSC.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "onboard-e2e",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	env.Server = startServer(t, env, storage.NewBriefArchive(s3Client))
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Composio != nil {
		e.Composio.Close()
	}
	if e.YouCom != nil {
		e.YouCom.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// startServer wires the services the way onboardd serve does, with the
// upstream clients pointed at the fakes.
func startServer(t *testing.T, env *E2ETestEnv, archive service.BriefArchive) *httptest.Server {
	logger := zaptest.NewLogger(t)
	sources := config.DefaultSources()
	sources.CompetitorQueries = []config.CompetitorQuery{
		{Name: "Zendesk", Query: competitorQ, IntelType: domain.IntelTypePricing},
	}

	tools := composio.NewClient("composio-test-key", composio.WithBaseURL(env.Composio.URL))
	web := youcom.NewClient("you-test-key",
		youcom.WithBaseURL(env.YouCom.URL),
		youcom.WithNewsBaseURL(env.YouCom.URL),
	)
	gen := stubGenerator{}

	retrieval := service.NewRetrievalService(llm.NoOpEmbedder{}, logger)
	augmenter := service.NewCompetitiveAugmenter(web, sources, logger)
	synthesis := service.NewSynthesisService(gen, sources.Company, sources.SearchDomain, logger)
	briefs := service.NewBriefCompiler(gen, archive, logger)
	assistant := service.NewAssistantService(retrieval, augmenter, synthesis, briefs, sources, logger)

	handles := repository.NewPoolHandles(env.Pool)
	ingestion := service.NewIngestionService(tools, retrieval,
		repository.NewTxRunner(env.Pool),
		repository.NewSyncStateRepository(env.Pool),
		sources, service.ParseSchedule("@every 6h"), logger)
	intel := service.NewIntelService(web, repository.NewCompetitorIntelRepository(env.Pool), sources, logger)

	executor := jobs.NewExecutor(handles, 2, logger)
	bounded := jobs.NewBoundedAssistant(executor, assistant, 30*time.Second, 30*time.Second, logger)

	router := server.NewRouter(server.RouterConfig{
		Logger:           logger,
		AdminToken:       adminToken,
		HealthHandler:    handlers.NewHealthHandler(handles),
		AssistantHandler: handlers.NewAssistantHandler(bounded),
		SyncHandler:      handlers.NewSyncHandler(ingestion),
		IntelHandler:     handlers.NewIntelHandler(intel),
	})
	return httptest.NewServer(router)
}

// stubGenerator answers prose prompts with the release note and JSON
// prompts with a fixed brief.
type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (llm.Generation, error) {
	if opts.JSON {
		return llm.Generation{Text: "```json\n" + briefPayload + "\n```", Outcome: domain.OutcomeOK}, nil
	}
	return llm.Generation{Text: "Releases go out on Thursdays [1].", Outcome: domain.OutcomeOK}, nil
}

// serveComposio fakes the toolkit API with one connected Notion account
// holding a single page.
func (e *E2ETestEnv) serveComposio(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/connected_accounts":
		io.WriteString(w, `{"items":[{"id":"ca_notion","toolkit":{"slug":"notion"}}]}`)
	case r.URL.Path == "/tools/execute/NOTION_SEARCH_NOTION_PAGE":
		e.composioCalls.Add(1)
		io.WriteString(w, `{"data":{"results":[{"id":"page-1"}]}}`)
	case r.URL.Path == "/tools/execute/NOTION_FETCH_BLOCK_CONTENTS":
		e.composioCalls.Add(1)
		fmt.Fprintf(w, `{"data":{"content":%q}}`, releaseNote)
	default:
		http.Error(w, `{"error":"unknown tool"}`, http.StatusNotFound)
	}
}

func serveYouCom(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/search":
		io.WriteString(w, `{"results":{"web":[{"url":"https://example.com/zendesk-pricing","title":"Zendesk pricing","description":"Zendesk raised Suite prices by ten percent for new customers."}],"news":[]}}`)
	case "/livenews":
		io.WriteString(w, `{"news":{"results":[{"url":"https://example.com/news","title":"Helpdesk market update","description":"Consolidation continues."}]}}`)
	default:
		http.NotFound(w, r)
	}
}

// BuildBinaries builds the onboard CLI.
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "onboard-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "onboard"), "./cmd/onboard")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build onboard: %v\n%s", err, out)
	}
}

// RunOnboard runs the onboard CLI against the test server.
func (e *E2ETestEnv) RunOnboard(token string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "onboard"), args...)
	cmd.Dir = e.BinaryDir
	cmd.Env = append(os.Environ(),
		"ONBOARD_API_URL="+e.Server.URL,
		"ONBOARD_ADMIN_TOKEN="+token,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	StatusCode int
	Outcome    string
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) *APIResponse {
	return e.doRequest(http.MethodGet, path, nil, "")
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body any, token string) *APIResponse {
	return e.doRequest(http.MethodPost, path, body, token)
}

func (e *E2ETestEnv) doRequest(method, path string, body any, token string) *APIResponse {
	e.T.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Server.Client().Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read body: %v", err)
	}

	apiResp := &APIResponse{StatusCode: resp.StatusCode, Outcome: resp.Header.Get(handlers.OutcomeHeader)}
	if len(strings.TrimSpace(string(respBody))) > 0 {
		if err := json.Unmarshal(respBody, apiResp); err != nil {
			e.T.Fatalf("%s %s: non-JSON body %q", method, path, respBody)
		}
	}
	return apiResp
}

// Decode unmarshals the data envelope into out.
func (r *APIResponse) Decode(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v (%s)", err, r.Data)
	}
}
