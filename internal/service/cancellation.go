package service

import (
	"fmt"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// CancellationDecision is the outcome of the cancellation policy check.
type CancellationDecision struct {
	Permitted bool
	Reason    string
}

// CanCancel decides whether an actor may cancel a booking at the given time.
//
// Providers may always cancel a confirmed booking. Clients may self-cancel
// only while the lead time before the booking start is at least the
// configured deadline; exactly at the deadline cancellation is still
// permitted. Cancelled and completed bookings are never cancellable again,
// regardless of role.
func CanCancel(b *models.Booking, now time.Time, role models.ActorRole, deadlineMinutes int) CancellationDecision {
	if b.Status != models.StatusConfirmed {
		return CancellationDecision{Reason: fmt.Sprintf("booking is %s", b.Status)}
	}

	if role == models.RoleProvider {
		return CancellationDecision{Permitted: true}
	}

	deadline := time.Duration(deadlineMinutes) * time.Minute
	if lead := b.StartTimestamp().Sub(now); lead < deadline {
		return CancellationDecision{
			Reason: fmt.Sprintf("cancellation deadline of %d minutes before start has passed", deadlineMinutes),
		}
	}
	return CancellationDecision{Permitted: true}
}
