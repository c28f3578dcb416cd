package application

import (
	"context"
	"fmt"
	"sync"

	"cardswap/application/dto"
)

// RecordingNotifier implements TradeNotifier for testing.
// Handles are "dm-<recipient>-<n>" for private messages and "channel-<n>" for listings.
type RecordingNotifier struct {
	mu         sync.Mutex
	next       int
	Sent       map[int64][]dto.TradeNoticeDTO
	Broadcasts []dto.TradeNoticeDTO
	Edits      map[string][]dto.TradeNoticeDTO
	EditError  error

	timeline map[int64][]dto.NoticeKind
}

// NewRecordingNotifier creates an empty recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{
		Sent:     make(map[int64][]dto.TradeNoticeDTO),
		Edits:    make(map[string][]dto.TradeNoticeDTO),
		timeline: make(map[int64][]dto.NoticeKind),
	}
}

func (n *RecordingNotifier) Notify(ctx context.Context, recipientID int64, notice dto.TradeNoticeDTO) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.Sent[recipientID] = append(n.Sent[recipientID], notice)
	n.timeline[recipientID] = append(n.timeline[recipientID], notice.Kind)
	return fmt.Sprintf("dm-%d-%d", recipientID, n.next), nil
}

func (n *RecordingNotifier) Broadcast(ctx context.Context, notice dto.TradeNoticeDTO) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.Broadcasts = append(n.Broadcasts, notice)
	n.timeline[0] = append(n.timeline[0], notice.Kind)
	return fmt.Sprintf("channel-%d", n.next), nil
}

func (n *RecordingNotifier) Edit(ctx context.Context, handle string, notice dto.TradeNoticeDTO) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.EditError != nil {
		return n.EditError
	}
	n.Edits[handle] = append(n.Edits[handle], notice)
	n.timeline[notice.Recipient] = append(n.timeline[notice.Recipient], notice.Kind)
	return nil
}

// LastKind returns the kind of the latest notice delivered to a user, sent or edited
func (n *RecordingNotifier) LastKind(recipientID int64) dto.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()

	timeline := n.timeline[recipientID]
	if len(timeline) == 0 {
		return ""
	}
	return timeline[len(timeline)-1]
}

// ListingKinds returns the kinds shown in the trade channel, in order
func (n *RecordingNotifier) ListingKinds() []dto.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dto.NoticeKind(nil), n.timeline[0]...)
}
