package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/luminedge/sage/pkg/logging"
)

type fakeBackend struct {
	titles      []string
	searchErr   error
	summaries   map[string]Excerpt
	summaryErr  error
	searchCalls int
}

func (f *fakeBackend) Search(_ context.Context, _ string) ([]string, error) {
	f.searchCalls++
	return f.titles, f.searchErr
}

func (f *fakeBackend) Summary(_ context.Context, title string) (Excerpt, error) {
	if f.summaryErr != nil {
		return Excerpt{}, f.summaryErr
	}
	return f.summaries[title], nil
}

func newTestCascade(t *testing.T, backend Backend) *Cascade {
	t.Helper()
	facts, err := LoadFactTable()
	if err != nil {
		t.Fatalf("LoadFactTable: %v", err)
	}
	return NewCascade(facts, backend, logging.NewLogger())
}

func TestCascadeResolve_IdentityBeatsEverything(t *testing.T) {
	backend := &fakeBackend{titles: []string{"Some Page"}}
	cascade := newTestCascade(t, backend)

	excerpts := cascade.Resolve(context.Background(), "who are you?")
	if len(excerpts) != 1 || excerpts[0].Title != "Internal knowledge" {
		t.Fatalf("expected identity excerpt, got %+v", excerpts)
	}
	if backend.searchCalls != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.searchCalls)
	}
}

func TestCascadeResolve_CuratedTopicBeatsBackend(t *testing.T) {
	backend := &fakeBackend{titles: []string{"Penicillin"}}
	cascade := newTestCascade(t, backend)

	excerpts := cascade.Resolve(context.Background(), "the history of penicillin")
	if len(excerpts) != 2 {
		t.Fatalf("expected curated excerpts, got %+v", excerpts)
	}
	if backend.searchCalls != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.searchCalls)
	}
}

func TestCascadeResolve_FallsThroughToBackend(t *testing.T) {
	backend := &fakeBackend{
		titles: []string{"Mount Everest"},
		summaries: map[string]Excerpt{
			"Mount Everest": {Title: "Mount Everest", Text: "Earth's highest mountain above sea level."},
		},
	}
	cascade := newTestCascade(t, backend)

	excerpts := cascade.Resolve(context.Background(), "how tall is everest")
	if len(excerpts) != 1 || excerpts[0].Title != "Mount Everest" {
		t.Fatalf("expected backend excerpt, got %+v", excerpts)
	}
}

func TestCascadeResolve_BackendErrorsAreEmpty(t *testing.T) {
	cascade := newTestCascade(t, &fakeBackend{searchErr: errors.New("offline")})

	if excerpts := cascade.Resolve(context.Background(), "an obscure topic"); len(excerpts) != 0 {
		t.Fatalf("expected empty resolution, got %+v", excerpts)
	}

	cascade = newTestCascade(t, &fakeBackend{titles: []string{"Page"}, summaryErr: errors.New("offline")})
	if excerpts := cascade.Resolve(context.Background(), "an obscure topic"); len(excerpts) != 0 {
		t.Fatalf("expected empty resolution on summary failure, got %+v", excerpts)
	}
}

func TestCascadeResolve_NilBackendAndEmptyQuery(t *testing.T) {
	cascade := newTestCascade(t, nil)

	if excerpts := cascade.Resolve(context.Background(), "an obscure topic"); len(excerpts) != 0 {
		t.Fatalf("expected empty resolution without backend, got %+v", excerpts)
	}
	if excerpts := cascade.Resolve(context.Background(), "   "); len(excerpts) != 0 {
		t.Fatalf("expected empty resolution for blank query, got %+v", excerpts)
	}
}
