package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/footylabs/clubledger/external/chatapi"
	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

type fakeMessenger struct {
	mu       sync.Mutex
	groups   map[int64][]int64
	groupErr error
	blocked  map[int64]bool
	sendErr  map[int64]error
	sent     map[int64][]string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		groups:  make(map[int64][]int64),
		blocked: make(map[int64]bool),
		sendErr: make(map[int64]error),
		sent:    make(map[int64][]string),
	}
}

func (m *fakeMessenger) GroupMembers(_ context.Context, groupID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groupErr != nil {
		return nil, m.groupErr
	}
	return m.groups[groupID], nil
}

func (m *fakeMessenger) SendDirect(_ context.Context, recipientID int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocked[recipientID] {
		return chatapi.ErrRecipientBlocked
	}
	if err := m.sendErr[recipientID]; err != nil {
		return err
	}
	m.sent[recipientID] = append(m.sent[recipientID], content)
	return nil
}

func (m *fakeMessenger) deliveries(recipientID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[recipientID]
}

func (m *fakeMessenger) totalDeliveries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, msgs := range m.sent {
		total += len(msgs)
	}
	return total
}

func testReminder(home, away club.Club) MatchReminder {
	return MatchReminder{
		MatchID:   1,
		HomeClub:  home,
		AwayClub:  away,
		MatchTime: time.Date(2026, 3, 7, 18, 30, 0, 0, time.UTC),
	}
}

func TestNotifier_NotifyMatch_OwnersGetOneMessageEach(t *testing.T) {
	messenger := newFakeMessenger()
	notifier := NewNotifier(messenger, 4, logging.NewNop())

	report, err := notifier.NotifyMatch(context.Background(), testReminder(
		club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100},
		club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
	))
	if err != nil {
		t.Fatalf("notify match failed: %v", err)
	}

	if report.Attempted != 2 || report.Delivered != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, ownerID := range []int64{100, 200} {
		got := messenger.deliveries(ownerID)
		if len(got) != 1 {
			t.Fatalf("expected one message for owner %d, got %d", ownerID, len(got))
		}
		if !strings.Contains(got[0], "Alpha FC") || !strings.Contains(got[0], "Bravo FC") {
			t.Fatalf("expected both club names in reminder, got %q", got[0])
		}
	}
}

func TestNotifier_NotifyMatch_SharedRecipientDeduplicated(t *testing.T) {
	messenger := newFakeMessenger()
	notifier := NewNotifier(messenger, 4, logging.NewNop())

	// Same owner on both sides of the fixture.
	report, err := notifier.NotifyMatch(context.Background(), testReminder(
		club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100},
		club.Club{ID: 2, Name: "Bravo FC", OwnerID: 100},
	))
	if err != nil {
		t.Fatalf("notify match failed: %v", err)
	}

	if report.Attempted != 1 || report.Delivered != 1 {
		t.Fatalf("expected single deduplicated delivery, got %+v", report)
	}
	if got := messenger.deliveries(100); len(got) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(got))
	}
}

func TestNotifier_NotifyMatch_GroupAudience(t *testing.T) {
	messenger := newFakeMessenger()
	groupID := int64(42)
	messenger.groups[groupID] = []int64{301, 302, 100}
	notifier := NewNotifier(messenger, 4, logging.NewNop())

	report, err := notifier.NotifyMatch(context.Background(), testReminder(
		club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100, NotificationGroupID: &groupID},
		club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
	))
	if err != nil {
		t.Fatalf("notify match failed: %v", err)
	}

	// Group members plus the away owner; 100 appears once despite being both
	// a member and the home owner.
	if report.Attempted != 4 || report.Delivered != 4 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, recipientID := range []int64{100, 200, 301, 302} {
		if len(messenger.deliveries(recipientID)) != 1 {
			t.Fatalf("expected one message for %d", recipientID)
		}
	}
}

func TestNotifier_NotifyMatch_GroupFallsBackToOwner(t *testing.T) {
	groupID := int64(42)

	t.Run("lookup error", func(t *testing.T) {
		messenger := newFakeMessenger()
		messenger.groupErr = fmt.Errorf("gateway timeout")
		notifier := NewNotifier(messenger, 4, logging.NewNop())

		report, err := notifier.NotifyMatch(context.Background(), testReminder(
			club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100, NotificationGroupID: &groupID},
			club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
		))
		if err != nil {
			t.Fatalf("notify match failed: %v", err)
		}
		if report.Delivered != 2 {
			t.Fatalf("expected owner fallback deliveries, got %+v", report)
		}
		if len(messenger.deliveries(100)) != 1 {
			t.Fatal("expected home owner to receive the fallback message")
		}
	})

	t.Run("empty group", func(t *testing.T) {
		messenger := newFakeMessenger()
		messenger.groups[groupID] = nil
		notifier := NewNotifier(messenger, 4, logging.NewNop())

		report, err := notifier.NotifyMatch(context.Background(), testReminder(
			club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100, NotificationGroupID: &groupID},
			club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
		))
		if err != nil {
			t.Fatalf("notify match failed: %v", err)
		}
		if report.Delivered != 2 {
			t.Fatalf("expected owner fallback deliveries, got %+v", report)
		}
	})
}

func TestNotifier_NotifyMatch_BlockedAndFailedRecipients(t *testing.T) {
	messenger := newFakeMessenger()
	groupID := int64(42)
	messenger.groups[groupID] = []int64{301, 302, 303}
	messenger.blocked[301] = true
	messenger.sendErr[302] = fmt.Errorf("send failed")
	notifier := NewNotifier(messenger, 4, logging.NewNop())

	report, err := notifier.NotifyMatch(context.Background(), testReminder(
		club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100, NotificationGroupID: &groupID},
		club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
	))
	if err != nil {
		t.Fatalf("per-recipient failures must not error the fan-out: %v", err)
	}

	if report.Attempted != 4 {
		t.Fatalf("expected 4 attempts, got %+v", report)
	}
	if report.Blocked != 1 || report.Failed != 1 || report.Delivered != 2 {
		t.Fatalf("expected 2 delivered, 1 blocked, 1 failed, got %+v", report)
	}
	if len(messenger.deliveries(301)) != 0 {
		t.Fatal("blocked recipient must not receive a message")
	}
}

func TestNotifier_NotifyMatch_UnavailablePlatformSurfacesDependencyError(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.sendErr[200] = chatapi.ErrUnavailable
	notifier := NewNotifier(messenger, 4, logging.NewNop())

	report, err := notifier.NotifyMatch(context.Background(), testReminder(
		club.Club{ID: 1, Name: "Alpha FC", OwnerID: 100},
		club.Club{ID: 2, Name: "Bravo FC", OwnerID: 200},
	))

	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if report.Delivered != 1 || report.Failed != 1 {
		t.Fatalf("expected reachable recipient still served, got %+v", report)
	}
	if len(messenger.deliveries(100)) != 1 {
		t.Fatal("expected the reachable owner to receive the reminder")
	}
}
