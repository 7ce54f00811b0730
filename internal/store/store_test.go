package store_test

import (
	"testing"

	"github.com/propdeck/challenge-backend/internal/store"
	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s, err := store.NewStore(zap.NewNop(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &types.ExportEnvelope{
		ChallengeConfig: types.DefaultChallengeConfig(),
		SessionData: types.SessionData{
			InitialCapital: decimal.NewFromInt(10000),
			CurrentBalance: decimal.NewFromInt(10250),
		},
		TradeData: []types.RawTrade{
			{Asset: "EURUSD", Side: "buy", Realized: "$100.00"},
		},
	}

	if err := s.SaveSession("eval-10k", env); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := s.LoadSession("eval-10k")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(got.TradeData) != 1 || got.TradeData[0].Asset != "EURUSD" {
		t.Errorf("unexpected trade data: %+v", got.TradeData)
	}
	if !got.SessionData.InitialCapital.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("initial capital = %s, want 10000", got.SessionData.InitialCapital)
	}
}

func TestStoreListAndDelete(t *testing.T) {
	s, err := store.NewStore(zap.NewNop(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &types.ExportEnvelope{}
	for _, name := range []string{"bravo", "alpha"} {
		if err := s.SaveSession(name, env); err != nil {
			t.Fatalf("SaveSession(%s) failed: %v", name, err)
		}
	}

	names, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "bravo" {
		t.Errorf("sessions = %v, want [alpha bravo]", names)
	}

	if err := s.DeleteSession("alpha"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.LoadSession("alpha"); err == nil {
		t.Error("loading a deleted session should fail")
	}
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	s, err := store.NewStore(zap.NewNop(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, name := range []string{"", "../escape", "a/b", `a\b`, "dotted.name"} {
		if err := s.SaveSession(name, &types.ExportEnvelope{}); err == nil {
			t.Errorf("SaveSession(%q) should have been rejected", name)
		}
	}
}
