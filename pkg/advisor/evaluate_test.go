package advisor

import (
	"context"
	"errors"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/pkg/breach"
	"sync"
	"testing"
)

type stubChecker struct {
	result breach.Result
	calls  int
	mu     sync.Mutex
}

func (s *stubChecker) Lookup(_ context.Context, _ string) breach.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

func intPtr(i int) *int {
	return &i
}

func TestEvaluate_EmptyPassword(t *testing.T) {
	checker := &stubChecker{result: breach.Found(false, intPtr(0))}
	report, err := NewEvaluator(checker).Evaluate(context.Background(), "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Should fail with ErrInvalidInput, got: %v", err)
	}
	if report != nil {
		t.Errorf("Report should be nil on invalid input")
	}
	if checker.calls != 0 {
		t.Errorf("Breach service should not be called for an empty password")
	}
}

func TestEvaluate_Messages(t *testing.T) {
	cases := []struct {
		name     string
		password Password
		result   breach.Result
		want     string
	}{
		{"strong", "Xk9#mP2$vL7!", breach.Found(false, intPtr(0)), MessageStrong},
		{"moderate", "aaaaaaaaaaaa", breach.Found(false, nil), MessageModerate},
		{"weak", "abc", breach.Found(false, nil), MessageWeak},
		{"leaked overrides strong", "Xk9#mP2$vL7!", breach.Found(true, intPtr(3)), MessageLeaked},
		{"leaked overrides weak", "abc", breach.Found(true, nil), MessageLeaked},
		{"degraded keeps tier", "Xk9#mP2$vL7!", breach.Degraded(breach.ReasonStatus, errors.New("500")), MessageStrong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := NewEvaluator(&stubChecker{result: tc.result}).Evaluate(context.Background(), tc.password)
			if err != nil {
				t.Fatalf("Should not fail: %s", err)
			}
			if report.Message != tc.want {
				t.Errorf("Message: %q, want: %q", report.Message, tc.want)
			}
		})
	}
}

func TestEvaluate_DegradedLookup(t *testing.T) {
	checker := &stubChecker{result: breach.Degraded(breach.ReasonTimeout, context.DeadlineExceeded)}
	report, err := NewEvaluator(checker).Evaluate(context.Background(), "P@ssw0rd123!")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	if report.Breach.Leaked {
		t.Errorf("Degraded lookup should not be leaked")
	}
	if !report.Breach.Unknown {
		t.Errorf("Degraded lookup should be unknown")
	}
	if report.Breach.Count != nil {
		t.Errorf("Degraded lookup should have no count")
	}
	if report.Score != 90 {
		t.Errorf("Score should be computed regardless of the lookup, have %d", report.Score)
	}
	if len(report.Checks) != len(Rules) || len(report.Recommendations) == 0 {
		t.Errorf("Checks and recommendations should be populated")
	}
}

func TestEvaluate_LeakedCount(t *testing.T) {
	checker := &stubChecker{result: breach.Found(true, intPtr(42))}
	report, err := NewEvaluator(checker).Evaluate(context.Background(), "letmein")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	if !report.Breach.Leaked || report.Breach.Count == nil || *report.Breach.Count != 42 {
		t.Errorf("Breach verdict should be leaked with count 42, have %+v", report.Breach)
	}
	if report.Entropy.CrackTimeDisplay == "" {
		t.Errorf("Entropy should be populated")
	}
}

func TestEvaluate_NilChecker(t *testing.T) {
	report, err := NewEvaluator(nil).Evaluate(context.Background(), "Xk9#mP2$vL7!")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if !report.Breach.Unknown {
		t.Errorf("Evaluation without a breach checker should be unknown")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	evaluator := NewEvaluator(&stubChecker{result: breach.Found(false, intPtr(0))})
	first, err := evaluator.Evaluate(context.Background(), "Tr0ub4dor&3")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	second, err := evaluator.Evaluate(context.Background(), "Tr0ub4dor&3")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	if fmt.Sprintf("%+v", first) != fmt.Sprintf("%+v", second) {
		t.Errorf("Reports should be identical: %+v != %+v", first, second)
	}
}

func TestEvaluate_Concurrent(t *testing.T) {
	passwords := []Password{"abc", "Xk9#mP2$vL7!", "aaaaaaaaaaaa", "P@ssw0rd123!", "password1234"}
	evaluator := NewEvaluator(&stubChecker{result: breach.Found(false, nil)})

	want := make([]int, len(passwords))
	for i, p := range passwords {
		report, err := evaluator.Evaluate(context.Background(), p)
		if err != nil {
			t.Fatalf("Should not fail: %s", err)
		}
		want[i] = report.Score
	}

	var wg sync.WaitGroup
	for round := 0; round < 20; round++ {
		for i, p := range passwords {
			wg.Add(1)
			go func(i int, p Password) {
				defer wg.Done()
				report, err := evaluator.Evaluate(context.Background(), p)
				if err != nil {
					t.Errorf("Should not fail: %s", err)
					return
				}
				if report.Score != want[i] {
					t.Errorf("Concurrent score %d, want: %d", report.Score, want[i])
				}
			}(i, p)
		}
	}
	wg.Wait()
}

func TestPassword_Redacted(t *testing.T) {
	p := Password("hunter2")
	if s := fmt.Sprintf("%s %v %#v", p, p, p); s != "[REDACTED] [REDACTED] [REDACTED]" {
		t.Errorf("Password should not print its value, got: %s", s)
	}
}
