package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/atende-insights/backend/internal/models"
)

func sampleCalls() []models.ServiceCall {
	return []models.ServiceCall{
		{ID: "1", DataHoraInicio: "2024-01-01T10:00:00", CanalNormalizado: "Chat - Web", Casa: "Matriz", Tema: "Financeiro"},
		{ID: "2", DataHoraInicio: "2024-01-02T11:00:00", CanalNormalizado: "Voz - Telefone", Casa: "Filial", Tema: ""},
		{ID: "3", DataHoraInicio: "2024-01-03T12:00:00", CanalNormalizado: "Chat - Web", Casa: "Falta de Interação", FlagFaltaInteracao: true, Tema: "Suporte"},
	}
}

func TestApplyFiltersEmptyStateAcceptsAll(t *testing.T) {
	calls := sampleCalls()
	got := ApplyFilters(calls, models.FilterState{})
	if len(got) != len(calls) {
		t.Fatalf("expected all %d calls, got %d", len(calls), len(got))
	}
}

func TestApplyFiltersDateRangeInclusive(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)
	got := ApplyFilters(sampleCalls(), models.FilterState{StartDate: &start, EndDate: &end})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected only call 2, got %+v", got)
	}
}

func TestApplyFiltersChannel(t *testing.T) {
	got := ApplyFilters(sampleCalls(), models.FilterState{Channels: []string{"Chat - Web"}})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("expected calls 1 and 3 in order, got %+v", got)
	}
}

func TestApplyFiltersUnsetThemeCountsAsFallback(t *testing.T) {
	got := ApplyFilters(sampleCalls(), models.FilterState{Themes: []string{FallbackTheme}})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected only the unclassified call, got %+v", got)
	}
}

func TestApplyFiltersOnlyNoInteraction(t *testing.T) {
	got := ApplyFilters(sampleCalls(), models.FilterState{OnlyNoInteraction: true})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected only the flagged call, got %+v", got)
	}
}

func TestApplyFiltersUnparsableStartWithoutDateFilter(t *testing.T) {
	calls := append(sampleCalls(), models.ServiceCall{ID: "4", DataHoraInicio: "not-a-date", CanalNormalizado: "Chat - Web"})

	got := ApplyFilters(calls, models.FilterState{})
	if len(got) != 4 {
		t.Fatalf("expected all 4 calls without a date dimension, got %d", len(got))
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got = ApplyFilters(calls, models.FilterState{StartDate: &start})
	if len(got) != 3 {
		t.Fatalf("expected the unparsable call dropped under a date filter, got %d", len(got))
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	filters := models.FilterState{Channels: []string{"Chat - Web"}, Houses: []string{"Matriz"}}
	once := ApplyFilters(sampleCalls(), filters)
	twice := ApplyFilters(once, filters)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotent filtering, got %+v vs %+v", once, twice)
	}
}
