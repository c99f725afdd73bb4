package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is one reminder addressed to a student's guardian
type Message struct {
	StudentID   uuid.UUID
	StudentName string
	Phone       string
	Body        string
}

// Notifier delivers reminder messages. Implementations must be safe for
// concurrent use; the reminder worker pool fans out across one instance.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes each message to the log instead of an SMS gateway.
// It stands in until a real gateway integration is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the message and reports success
func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("payment reminder dispatched",
		zap.String("student_id", msg.StudentID.String()),
		zap.String("student_name", msg.StudentName),
		zap.String("phone", msg.Phone),
		zap.String("body", msg.Body),
	)
	return nil
}

// Ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)
