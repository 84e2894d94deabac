package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/footylabs/clubledger/external/chatapi"
	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

// Messenger is the outbound chat capability the notifier consumes.
type Messenger interface {
	GroupMembers(ctx context.Context, groupID int64) ([]int64, error)
	SendDirect(ctx context.Context, recipientID int64, content string) error
}

// MatchReminder is one dispatched reminder, resolved to both clubs.
type MatchReminder struct {
	MatchID   int64
	HomeClub  club.Club
	AwayClub  club.Club
	MatchTime time.Time
}

// DeliveryReport counts the outcome of one fan-out.
type DeliveryReport struct {
	Attempted int
	Delivered int
	Blocked   int
	Failed    int
}

type Notifier struct {
	messenger Messenger
	workers   int
	logger    *logging.Logger
}

func NewNotifier(messenger Messenger, workers int, logger *logging.Logger) *Notifier {
	if workers <= 0 {
		workers = 8
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Notifier{
		messenger: messenger,
		workers:   workers,
		logger:    logger,
	}
}

// NotifyMatch resolves both audiences at dispatch time and fans the reminder
// out over a bounded worker pool. Recipients reachable through both clubs are
// merged so each gets exactly one message. Blocked recipients are skipped and
// individual failures only counted; the one returned error is
// ErrDependencyUnavailable, raised when the chat platform itself was
// unreachable (circuit open or retries exhausted) during the fan-out.
func (n *Notifier) NotifyMatch(ctx context.Context, reminder MatchReminder) (DeliveryReport, error) {
	recipients := n.mergeRecipients(ctx, reminder.HomeClub, reminder.AwayClub)
	report := DeliveryReport{Attempted: len(recipients)}
	if len(recipients) == 0 {
		return report, nil
	}

	content := formatReminder(reminder)

	pool, err := ants.NewPool(min(n.workers, len(recipients)))
	if err != nil {
		n.logger.ErrorContext(ctx, "create delivery pool", "error", err, "match_id", reminder.MatchID)
		report.Failed = len(recipients)
		return report, nil
	}
	defer pool.Release()

	var delivered atomic.Int32
	var blocked atomic.Int32
	var failed atomic.Int32
	var unavailable atomic.Bool

	var workers sync.WaitGroup
	for _, recipientID := range recipients {
		recipientID := recipientID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			err := n.messenger.SendDirect(ctx, recipientID, content)
			switch {
			case err == nil:
				delivered.Add(1)
			case errors.Is(err, chatapi.ErrRecipientBlocked):
				blocked.Add(1)
				n.logger.WarnContext(ctx, "recipient blocks direct messages, skipping",
					"recipient_id", recipientID,
					"match_id", reminder.MatchID,
				)
			default:
				failed.Add(1)
				if errors.Is(err, chatapi.ErrUnavailable) {
					unavailable.Store(true)
				}
				n.logger.ErrorContext(ctx, "reminder delivery failed",
					"error", err,
					"recipient_id", recipientID,
					"match_id", reminder.MatchID,
				)
			}
		}); err != nil {
			workers.Done()
			failed.Add(1)
		}
	}

	workers.Wait()

	report.Delivered = int(delivered.Load())
	report.Blocked = int(blocked.Load())
	report.Failed = int(failed.Load())

	if unavailable.Load() {
		return report, fmt.Errorf("%w: chat platform unreachable during fan-out", ErrDependencyUnavailable)
	}

	return report, nil
}

// mergeRecipients unions both audiences into one de-duplicated, ordered list.
func (n *Notifier) mergeRecipients(ctx context.Context, clubs ...club.Club) []int64 {
	seen := make(map[int64]struct{})
	for _, item := range clubs {
		for _, recipientID := range n.resolveAudience(ctx, item) {
			seen[recipientID] = struct{}{}
		}
	}

	out := make([]int64, 0, len(seen))
	for recipientID := range seen {
		out = append(out, recipientID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// resolveAudience looks up the club's notification group live; a missing
// group, a lookup failure or an empty group all fall back to the owner.
func (n *Notifier) resolveAudience(ctx context.Context, item club.Club) []int64 {
	if item.NotificationGroupID != nil {
		members, err := n.messenger.GroupMembers(ctx, *item.NotificationGroupID)
		if err != nil {
			n.logger.WarnContext(ctx, "group member lookup failed, falling back to owner",
				"error", err,
				"club_id", item.ID,
				"group_id", *item.NotificationGroupID,
			)
		} else if len(members) > 0 {
			return members
		}
	}

	return []int64{item.OwnerID}
}

func formatReminder(reminder MatchReminder) string {
	return fmt.Sprintf("Match reminder: %s vs %s kicks off at %s.",
		reminder.HomeClub.Name,
		reminder.AwayClub.Name,
		reminder.MatchTime.UTC().Format(time.RFC1123),
	)
}
