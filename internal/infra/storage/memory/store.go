package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type exceptionKey struct {
	staffID int64
	date    string
}

// Store хранилище в памяти процесса с теми же контрактами, что и PostgreSQL-репозитории.
// Используется при database.driver = "memory" и в тестах
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bookings   map[int64]domain.Booking
	services   map[int64]domain.Service
	staff      map[int64]domain.Staff
	exceptions map[exceptionKey]domain.ScheduleException

	nextBookingID   int64
	nextServiceID   int64
	nextStaffID     int64
	nextExceptionID int64

	journal *undoLog

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		bookings:   make(map[int64]domain.Booking),
		services:   make(map[int64]domain.Service),
		staff:      make(map[int64]domain.Staff),
		exceptions: make(map[exceptionKey]domain.ScheduleException),
		now:        time.Now,
	}
}

// Bookings возвращает репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

// Directory возвращает справочник услуг, сотрудников и исключений поверх хранилища
func (s *Store) Directory() *DirectoryRepository {
	return &DirectoryRepository{store: s}
}

// TxManager возвращает менеджер транзакций поверх хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

type txKey struct{}

// TxManager сериализует единицы работы и откатывает изменения при ошибке
type TxManager struct {
	store *Store
}

// Do выполняет fn как единицу работы
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn как единицу работы. Все единицы работы выполняются строго по очереди
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn как единицу работы
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов выполняется в рамках внешней единицы работы
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	m.store.begin()

	defer func() {
		if p := recover(); p != nil {
			m.store.rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		m.store.rollback()
		return err
	}

	m.store.commit()
	return nil
}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// undoLog хранит прежние значения ключей, измененных текущей единицей работы.
// nil означает, что ключа не было
type undoLog struct {
	bookings   map[int64]*domain.Booking
	exceptions map[exceptionKey]*domain.ScheduleException
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = &undoLog{
		bookings:   make(map[int64]*domain.Booking),
		exceptions: make(map[exceptionKey]*domain.ScheduleException),
	}
}

func (s *Store) commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = nil
}

// rollback возвращает только ключи, которые изменила единица работы
func (s *Store) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, prev := range s.journal.bookings {
		if prev == nil {
			delete(s.bookings, id)
			continue
		}
		s.bookings[id] = *prev
	}
	for key, prev := range s.journal.exceptions {
		if prev == nil {
			delete(s.exceptions, key)
			continue
		}
		s.exceptions[key] = *prev
	}
	s.journal = nil
}

// write выполняет fn под s.mu. Запись вне единицы работы ждет завершения текущей транзакции
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// rememberBookingLocked запоминает прежнее значение бронирования. Вызывается под s.mu
func (s *Store) rememberBookingLocked(id int64) {
	if s.journal == nil {
		return
	}
	if _, ok := s.journal.bookings[id]; ok {
		return
	}
	if b, ok := s.bookings[id]; ok {
		s.journal.bookings[id] = &b
		return
	}
	s.journal.bookings[id] = nil
}

// rememberExceptionLocked запоминает прежнее значение исключения. Вызывается под s.mu
func (s *Store) rememberExceptionLocked(key exceptionKey) {
	if s.journal == nil {
		return
	}
	if _, ok := s.journal.exceptions[key]; ok {
		return
	}
	if e, ok := s.exceptions[key]; ok {
		s.journal.exceptions[key] = &e
		return
	}
	s.journal.exceptions[key] = nil
}
