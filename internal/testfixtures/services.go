package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/persistence/adapter"
	"github.com/example/vacation-approval/internal/persistence/sqlite"
)

// FastHashPassword hashes with the minimum bcrypt cost to keep tests quick.
func FastHashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Logger == nil {
		factory.Logger = DiscardLogger()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services bundles the application services over one storage backend.
type Services struct {
	Backend       adapter.Backend
	Store         *adapter.Store
	Notifications *application.NotificationService
	Vacations     *application.VacationService
	Users         *application.UserService
	Auth          *application.AuthService
}

// NewServices wires every service over backend. A nil backend selects a
// fresh in-memory store. Notifications are delivered through notifier when
// given and stored in the inbox otherwise.
func (f *ServiceFactory) NewServices(backend adapter.Backend, notifier application.Notifier) *Services {
	if backend == nil {
		backend = sqlite.NewMemory()
	}
	store := adapter.New(backend)
	now := f.Clock.NowFunc()
	ids := f.IDGenerator.NextFunc()

	notifications := application.NewNotificationServiceWithLogger(store, ids, now, f.Logger)
	if notifier == nil {
		notifier = notifications
	}
	return &Services{
		Backend:       backend,
		Store:         store,
		Notifications: notifications,
		Vacations:     application.NewVacationServiceWithLogger(store, notifier, ids, now, time.UTC, f.Logger),
		Users:         application.NewUserServiceWithLogger(store, FastHashPassword, "", ids, now, f.Logger),
		Auth:          application.NewAuthServiceWithLogger(store, nil, FastHashPassword, "", now, f.Logger),
	}
}

// Delivery is one captured notification.
type Delivery struct {
	UserID  string
	Message string
}

// RecordingNotifier captures notifications and optionally fails delivery.
type RecordingNotifier struct {
	mu         sync.Mutex
	deliveries []Delivery
	Err        error
}

// Notify records the delivery and returns Err.
func (n *RecordingNotifier) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliveries = append(n.deliveries, Delivery{UserID: userID, Message: message})
	return n.Err
}

// Deliveries returns a copy of the captured notifications.
func (n *RecordingNotifier) Deliveries() []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Delivery, len(n.deliveries))
	copy(out, n.deliveries)
	return out
}

// Recipients returns the recipient IDs in delivery order.
func (n *RecordingNotifier) Recipients() []string {
	deliveries := n.Deliveries()
	ids := make([]string, len(deliveries))
	for i, d := range deliveries {
		ids[i] = d.UserID
	}
	return ids
}
