package sector

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	domsector "github.com/kailas-cloud/grantdex/internal/domain/sector"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAIMetrics()
	os.Exit(m.Run())
}

func replying(content string, err error) domain.Completer {
	return domain.CompleterFunc(func(_ context.Context, _ domain.Prompt) (domain.Completion, error) {
		if err != nil {
			return domain.Completion{}, err
		}
		return domain.Completion{Content: content, TotalTokens: 10}, nil
	})
}

func TestClassify_AIObject(t *testing.T) {
	svc := New(replying(`{"relevantSectors":["Energi, klimat & hållbar utveckling","Påhittad sektor"],"explanation":"x"}`, nil), zap.NewNop())

	out := svc.Classify(context.Background(), "solceller på tak")
	if out.Degraded() {
		t.Fatalf("unexpected degradation: %v", out.Err)
	}
	if len(out.Value) != 1 || out.Value[0] != "Energi, klimat & hållbar utveckling" {
		t.Errorf("labels = %v, unknown labels must be dropped", out.Value)
	}
}

func TestClassify_AIBareArrayWithFences(t *testing.T) {
	svc := New(replying("```json\n[\"Hav, marin miljö & blå ekonomi\"]\n```", nil), zap.NewNop())

	out := svc.Classify(context.Background(), "fiske")
	if out.Degraded() || len(out.Value) != 1 || out.Value[0] != "Hav, marin miljö & blå ekonomi" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestClassify_NoValidLabelsGivesCatchAll(t *testing.T) {
	svc := New(replying(`{"relevantSectors":["Nonsens"]}`, nil), zap.NewNop())

	out := svc.Classify(context.Background(), "något")
	if out.Degraded() {
		t.Fatal("a valid reply with no known labels is not a failure")
	}
	if len(out.Value) != 1 || out.Value[0] != domsector.CatchAll {
		t.Errorf("labels = %v, want catch-all", out.Value)
	}
}

func TestClassify_FailuresAreEmptySet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		wantErr error
	}{
		{"transport", "", errors.New("connection reset"), domain.ErrTransport},
		{"not json", "Here are the sectors: Energi", nil, domain.ErrSchema},
		{"wrong shape", `{"sectors":"Energi"}`, nil, domain.ErrSchema},
		{"array of numbers", `[1,2]`, nil, domain.ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(replying(tt.content, tt.err), zap.NewNop())
			out := svc.Classify(context.Background(), "energi")
			if !errors.Is(out.Err, tt.wantErr) {
				t.Fatalf("Err = %v, want %v", out.Err, tt.wantErr)
			}
			if out.Value == nil || len(out.Value) != 0 {
				t.Errorf("fallback value = %v, want empty non-nil set", out.Value)
			}
		})
	}
}

func TestClassify_KeywordFallbackWithoutAI(t *testing.T) {
	svc := New(nil, zap.NewNop())

	out := svc.Classify(context.Background(), "Havsbaserad energi")
	if out.Degraded() {
		t.Fatal("keyword fallback is not a degradation")
	}
	if len(out.Value) != 2 {
		t.Errorf("labels = %v, want ocean and energy sectors", out.Value)
	}

	out = svc.Classify(context.Background(), "bageri")
	if len(out.Value) != 1 || out.Value[0] != domsector.CatchAll {
		t.Errorf("labels = %v, want catch-all", out.Value)
	}
}

func TestClassify_EmptyQuery(t *testing.T) {
	svc := New(replying(`[]`, nil), zap.NewNop())
	out := svc.Classify(context.Background(), "   ")
	if !errors.Is(out.Err, domain.ErrEmptyQuery) {
		t.Errorf("Err = %v, want ErrEmptyQuery", out.Err)
	}
}

func TestMatch_Explanation(t *testing.T) {
	m := New(nil, zap.NewNop()).Match(context.Background(), "transport")
	if m.Source != SourceKeywords || !strings.Contains(m.Explanation, "keyword") {
		t.Errorf("match = %+v", m)
	}

	m = New(replying("", errors.New("down")), zap.NewNop()).Match(context.Background(), "transport")
	if !m.Degraded || len(m.Sectors) != 0 {
		t.Errorf("match = %+v", m)
	}
}

func TestBuildPrompt_ListsEveryLabel(t *testing.T) {
	p := buildPrompt(`vatten "rening"`)
	for i, l := range domsector.Labels() {
		if !strings.Contains(p, l) {
			t.Errorf("prompt missing label %d %q", i+1, l)
		}
	}
	if !strings.Contains(p, `"vatten \"rening\""`) {
		t.Error("query must be quoted in the prompt")
	}
}
