package notifier

import (
	"context"

	"github.com/taskflowhq/taskflow-api/internal/domain"
)

// EmailSender is the email delivery collaborator. hoursBefore is the
// threshold that fired, or zero for an overdue notice. Implementations
// may fail; the dispatcher catches and swallows those failures so one
// bad send never blocks the realtime channel or the rest of a scan.
type EmailSender interface {
	SendReminder(ctx context.Context, task *domain.TaskSnapshot, hoursBefore int) error
}
