package sqlite

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/vacation-approval/internal/persistence"
)

// Memory is an in-process persistence.Store used by tests and throwaway runs.
// Transactions are serialised and roll back by restoring a snapshot. Reads
// made outside a transaction may observe writes of an open transaction.
type Memory struct {
	*memoryState
	txMu sync.Mutex
}

var (
	_ persistence.Store      = (*Memory)(nil)
	_ persistence.Transactor = (*Memory)(nil)
)

type memoryState struct {
	mu            sync.RWMutex
	users         map[string]persistence.User
	vacations     map[string]persistence.VacationRequest
	notifications map[string]persistence.Notification
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{memoryState: &memoryState{
		users:         make(map[string]persistence.User),
		vacations:     make(map[string]persistence.VacationRequest),
		notifications: make(map[string]persistence.Notification),
	}}
}

// Close is a no-op for the in-memory implementation.
func (m *Memory) Close() error {
	return nil
}

// WithinTx runs fn with exclusive write access and undoes its writes on error or panic.
func (m *Memory) WithinTx(ctx context.Context, fn func(persistence.Store) error) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.restore(snap)
			panic(p)
		}
		if err != nil {
			m.restore(snap)
		}
	}()
	return fn(m.memoryState)
}

// Writes outside WithinTx still wait for open transactions.

func (m *Memory) CreateUser(ctx context.Context, user persistence.User) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.CreateUser(ctx, user)
}

func (m *Memory) UpdateUser(ctx context.Context, user persistence.User) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.UpdateUser(ctx, user)
}

func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.DeleteUser(ctx, id)
}

func (m *Memory) LockUser(ctx context.Context, id string) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.LockUser(ctx, id)
}

func (m *Memory) CreateVacation(ctx context.Context, request persistence.VacationRequest) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.CreateVacation(ctx, request)
}

func (m *Memory) UpdateVacationStatus(ctx context.Context, id, expected, next string, updatedAt time.Time) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.UpdateVacationStatus(ctx, id, expected, next, updatedAt)
}

func (m *Memory) DeleteVacation(ctx context.Context, id string, expected ...string) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.DeleteVacation(ctx, id, expected...)
}

func (m *Memory) CreateNotification(ctx context.Context, n persistence.Notification) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.CreateNotification(ctx, n)
}

func (m *Memory) MarkNotificationsRead(ctx context.Context, userID string) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.MarkNotificationsRead(ctx, userID)
}

func (m *Memory) MarkNotificationRead(ctx context.Context, id, userID string) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.memoryState.MarkNotificationRead(ctx, id, userID)
}

type memorySnapshot struct {
	users         map[string]persistence.User
	vacations     map[string]persistence.VacationRequest
	notifications map[string]persistence.Notification
}

func (s *memoryState) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memorySnapshot{
		users:         maps.Clone(s.users),
		vacations:     maps.Clone(s.vacations),
		notifications: maps.Clone(s.notifications),
	}
}

func (s *memoryState) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.vacations = snap.vacations
	s.notifications = snap.notifications
}

// --- UserRepository implementation ---

func (s *memoryState) CreateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%w: user %s", persistence.ErrDuplicate, user.ID)
	}
	if err := s.ensureUniqueLocked(user); err != nil {
		return err
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryState) UpdateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueLocked(user); err != nil {
		return err
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryState) GetUser(_ context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *memoryState) GetUserByUsername(_ context.Context, username string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.TrimSpace(username)
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *memoryState) ListUsers(_ context.Context) ([]persistence.User, error) {
	return s.filterUsers(func(persistence.User) bool { return true }), nil
}

func (s *memoryState) ListUsersByRole(_ context.Context, role, part string) ([]persistence.User, error) {
	return s.filterUsers(func(u persistence.User) bool {
		if part != "" && u.Part != part {
			return false
		}
		return slices.Contains(strings.Split(u.Roles, ","), role)
	}), nil
}

func (s *memoryState) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	maps.DeleteFunc(s.vacations, func(_ string, v persistence.VacationRequest) bool { return v.UserID == id })
	maps.DeleteFunc(s.notifications, func(_ string, n persistence.Notification) bool { return n.UserID == id })
	return nil
}

func (s *memoryState) LockUser(_ context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *memoryState) ensureUniqueLocked(user persistence.User) error {
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.EmployeeNumber == user.EmployeeNumber {
			return fmt.Errorf("%w: employee number %s", persistence.ErrDuplicate, user.EmployeeNumber)
		}
		if existing.Username == user.Username {
			return fmt.Errorf("%w: username %s", persistence.ErrDuplicate, user.Username)
		}
	}
	return nil
}

func (s *memoryState) filterUsers(keep func(persistence.User) bool) []persistence.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []persistence.User
	for _, user := range s.users {
		if keep(user) {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].EmployeeNumber == users[j].EmployeeNumber {
			return users[i].ID < users[j].ID
		}
		return users[i].EmployeeNumber < users[j].EmployeeNumber
	})
	return users
}

// --- VacationRepository implementation ---

func (s *memoryState) CreateVacation(_ context.Context, request persistence.VacationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vacations[request.ID]; ok {
		return fmt.Errorf("%w: vacation %s", persistence.ErrDuplicate, request.ID)
	}
	if _, ok := s.users[request.UserID]; !ok {
		return fmt.Errorf("%w: user %s", persistence.ErrForeignKey, request.UserID)
	}
	s.vacations[request.ID] = request
	return nil
}

func (s *memoryState) GetVacation(_ context.Context, id string) (persistence.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.vacations[id]
	if !ok {
		return persistence.VacationRequest{}, persistence.ErrNotFound
	}
	return request, nil
}

func (s *memoryState) ListVacationsByUser(_ context.Context, userID string) ([]persistence.VacationRequest, error) {
	requests := s.filterVacations(func(v persistence.VacationRequest) bool { return v.UserID == userID })
	slices.Reverse(requests)
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].StartDate.After(requests[j].StartDate) })
	return requests, nil
}

func (s *memoryState) ListVacationsByStatus(_ context.Context, status string) ([]persistence.VacationRequest, error) {
	return s.filterVacations(func(v persistence.VacationRequest) bool { return v.Status == status }), nil
}

func (s *memoryState) ListVacationsByStatusAndPart(_ context.Context, status, part string) ([]persistence.VacationRequest, error) {
	s.mu.RLock()
	owners := make(map[string]bool)
	for id, user := range s.users {
		owners[id] = user.Part == part
	}
	s.mu.RUnlock()

	return s.filterVacations(func(v persistence.VacationRequest) bool {
		return v.Status == status && owners[v.UserID]
	}), nil
}

func (s *memoryState) UpdateVacationStatus(_ context.Context, id, expected, next string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.vacations[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if request.Status != expected {
		return persistence.ErrStatusConflict
	}
	request.Status = next
	request.UpdatedAt = updatedAt
	s.vacations[id] = request
	return nil
}

func (s *memoryState) DeleteVacation(_ context.Context, id string, expected ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.vacations[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if !slices.Contains(expected, request.Status) {
		return persistence.ErrStatusConflict
	}
	delete(s.vacations, id)
	return nil
}

// filterVacations returns matches ordered by start date, then ID.
func (s *memoryState) filterVacations(keep func(persistence.VacationRequest) bool) []persistence.VacationRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []persistence.VacationRequest
	for _, request := range s.vacations {
		if keep(request) {
			requests = append(requests, request)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].StartDate.Equal(requests[j].StartDate) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].StartDate.Before(requests[j].StartDate)
	})
	return requests
}

// --- NotificationRepository implementation ---

func (s *memoryState) CreateNotification(_ context.Context, n persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[n.UserID]; !ok {
		return fmt.Errorf("%w: user %s", persistence.ErrForeignKey, n.UserID)
	}
	s.notifications[n.ID] = n
	return nil
}

func (s *memoryState) ListNotificationsByUser(_ context.Context, userID string) ([]persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notifications []persistence.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID > notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *memoryState) CountUnreadNotifications(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *memoryState) MarkNotificationsRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
		}
	}
	return nil
}

func (s *memoryState) MarkNotificationRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return persistence.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}
