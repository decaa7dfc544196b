package session_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	"github.com/haneimo/harts-viewer/internal/service/session"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func card(s string) model.Card { return model.ParseCardString(s) }

func cardPtr(s string) *model.Card {
	c := card(s)
	return &c
}

func intPtr(v int) *int { return &v }

func testLog() *model.GameLog {
	play := func(player int, c string) model.TurnRecord {
		return model.TurnRecord{
			Action:        model.ActionPlayCard,
			RoundNumber:   1,
			CurrentPlayer: intPtr(player),
			Card:          cardPtr(c),
		}
	}
	return &model.GameLog{
		GameType:  "Harts",
		StartTime: "2025-01-15T19:00:00Z",
		Players: []model.Player{
			{Name: "A", Hand: []model.Card{card("S_A")}},
			{Name: "B", Hand: []model.Card{card("H_K")}},
			{Name: "C", Hand: []model.Card{card("D_Q")}},
			{Name: "D", Hand: []model.Card{card("C_J")}},
		},
		Turns: []model.TurnRecord{
			{Action: model.ActionTrickStart, RoundNumber: 1},
			play(0, "S_A"),
			play(1, "H_K"),
			play(2, "D_Q"),
			play(3, "C_J"),
			{Action: model.ActionTrickWon, RoundNumber: 1, WinningPlayer: intPtr(0)},
			{Action: model.ActionTrickStart, RoundNumber: 2},
		},
	}
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	return session.NewService(nil).Create(testLog())
}

func TestStepForwardAndBackward(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	snap := sess.StepForward(ctx)
	if snap.TurnIndex != 1 {
		t.Fatalf("after step forward index = %d", snap.TurnIndex)
	}
	snap = sess.StepBackward(ctx)
	if snap.TurnIndex != 0 {
		t.Fatalf("after step backward index = %d", snap.TurnIndex)
	}
}

func TestStepClampsAtBounds(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	if snap := sess.StepBackward(ctx); snap.TurnIndex != 0 {
		t.Fatalf("stepping back at start moved to %d", snap.TurnIndex)
	}
	for i := 0; i < 20; i++ {
		sess.StepForward(ctx)
	}
	if snap := sess.Snapshot(ctx); snap.TurnIndex != 6 {
		t.Fatalf("index past end of log: %d", snap.TurnIndex)
	}
}

func TestJumpToTurn(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	snap, err := sess.JumpToTurn(ctx, 5)
	if err != nil {
		t.Fatalf("JumpToTurn: %v", err)
	}
	if snap.TurnIndex != 4 {
		t.Fatalf("turn 5 should land on index 4, got %d", snap.TurnIndex)
	}

	for _, turn := range []int{0, -1, 8} {
		if _, err := sess.JumpToTurn(ctx, turn); !errors.Is(err, appErr.ErrTurnOutOfRange) {
			t.Fatalf("JumpToTurn(%d) err = %v", turn, err)
		}
	}
	if snap := sess.Snapshot(ctx); snap.TurnIndex != 4 {
		t.Fatalf("rejected jump moved the position to %d", snap.TurnIndex)
	}
}

func TestJumpToRound(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	snap, err := sess.JumpToRound(ctx, 2)
	if err != nil {
		t.Fatalf("JumpToRound: %v", err)
	}
	if snap.TurnIndex != 6 {
		t.Fatalf("round 2 starts at index 6, got %d", snap.TurnIndex)
	}

	for _, round := range []int{0, 3} {
		if _, err := sess.JumpToRound(ctx, round); !errors.Is(err, appErr.ErrRoundOutOfRange) {
			t.Fatalf("JumpToRound(%d) err = %v", round, err)
		}
	}
}

func TestSeekFraction(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	snap, err := sess.SeekFraction(ctx, 0)
	if err != nil || snap.TurnIndex != 0 {
		t.Fatalf("seek 0: %v %d", err, snap.TurnIndex)
	}
	snap, err = sess.SeekFraction(ctx, 1)
	if err != nil || snap.TurnIndex != 6 {
		t.Fatalf("seek 1 should clamp to the last turn: %v %d", err, snap.TurnIndex)
	}
	snap, err = sess.SeekFraction(ctx, 0.5)
	if err != nil || snap.TurnIndex != 3 {
		t.Fatalf("seek 0.5: %v %d", err, snap.TurnIndex)
	}

	for _, f := range []float64{-0.1, 1.1} {
		if _, err := sess.SeekFraction(ctx, f); !errors.Is(err, appErr.ErrInvalidFraction) {
			t.Fatalf("SeekFraction(%v) err = %v", f, err)
		}
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	sess.JumpToTurn(ctx, 6)
	if snap := sess.Reset(ctx); snap.TurnIndex != 0 {
		t.Fatalf("reset landed on %d", snap.TurnIndex)
	}
}

func TestSetSpeed(t *testing.T) {
	sess := newTestSession(t)

	got, err := sess.SetSpeed(2)
	if err != nil || got != 2 {
		t.Fatalf("SetSpeed(2) = %v, %v", got, err)
	}
	got, err = sess.SetSpeed(1.25)
	if !errors.Is(err, appErr.ErrInvalidSpeed) {
		t.Fatalf("SetSpeed(1.25) err = %v", err)
	}
	if got != 2 {
		t.Fatalf("rejected speed changed the setting to %v", got)
	}
}

func TestToggleSpeedCycles(t *testing.T) {
	sess := newTestSession(t)

	want := []float64{1.5, 2, 3, 0.5, 1, 1.5}
	for i, w := range want {
		if got := sess.ToggleSpeed(); got != w {
			t.Fatalf("toggle %d = %v, want %v", i, got, w)
		}
	}
}

func TestReplaceLogResetsPosition(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	sess.JumpToTurn(ctx, 6)

	next := testLog()
	next.Turns = next.Turns[:3]
	snap := sess.ReplaceLog(ctx, next)
	if snap.TurnIndex != 0 || snap.TurnCount != 3 {
		t.Fatalf("after replace index/count = %d/%d", snap.TurnIndex, snap.TurnCount)
	}
	if snap.SwapPanel != nil || snap.ResultPanel != nil {
		t.Fatalf("panels must not survive a log replacement")
	}
}

func TestSubscribeDeliversImmediately(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	sess.JumpToTurn(ctx, 3)

	ch := sess.Subscribe(ctx, "sub-1")
	defer sess.Unsubscribe("sub-1")

	msg := <-ch
	if msg.Type != "snapshot" {
		t.Fatalf("message type = %q", msg.Type)
	}
	snap, ok := msg.Data.(*replay.Snapshot)
	if !ok {
		t.Fatalf("message data has type %T", msg.Data)
	}
	if snap.TurnIndex != 2 {
		t.Fatalf("subscriber saw index %d, want 2", snap.TurnIndex)
	}
}

func TestSubscribersReceiveNavigation(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	ch := sess.Subscribe(ctx, "sub-1")
	defer sess.Unsubscribe("sub-1")
	<-ch // initial snapshot

	sess.StepForward(ctx)
	msg := <-ch
	if snap := msg.Data.(*replay.Snapshot); snap.TurnIndex != 1 {
		t.Fatalf("subscriber saw index %d, want 1", snap.TurnIndex)
	}

	// A clamped, unmoved navigation must not broadcast.
	sess.StepBackward(ctx)
	sess.StepBackward(ctx)
	msg = <-ch
	if snap := msg.Data.(*replay.Snapshot); snap.TurnIndex != 0 {
		t.Fatalf("subscriber saw index %d, want 0", snap.TurnIndex)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected broadcast: %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	ch := sess.Subscribe(ctx, "sub-1")
	<-ch
	sess.Unsubscribe("sub-1")
	if _, open := <-ch; open {
		t.Fatalf("channel still open after unsubscribe")
	}
}

func TestServiceGetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := session.NewService(nil)
	sess := svc.Create(testLog())

	got, err := svc.Get(sess.ID())
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := svc.Get("nope"); !errors.Is(err, appErr.ErrSessionNotFound) {
		t.Fatalf("Get(nope) err = %v", err)
	}

	ch := sess.Subscribe(ctx, "sub-1")
	<-ch
	if err := svc.Delete(ctx, sess.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, open := <-ch; open {
		t.Fatalf("delete must close subscriber channels")
	}
	if err := svc.Delete(ctx, sess.ID()); !errors.Is(err, appErr.ErrSessionNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
