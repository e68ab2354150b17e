package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Cache кэш рассчитанных слотов в Redis.
// Ключ availability:staff:{staffId}:{date}:gen хранит поколение записей сотрудника на дату,
// слоты лежат в хэше availability:staff:{staffId}:{date}:{generation}, поле - ID услуги.
// Любая запись бронирования сотрудника на дату увеличивает поколение, поэтому слоты,
// рассчитанные до записи, сохраняются под устаревшим ключом и больше не читаются
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache создает кэш доступности
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type cachedSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func prefix(staffID int64, date string) string {
	return "availability:staff:" + strconv.FormatInt(staffID, 10) + ":" + date
}

func generationKey(staffID int64, date string) string {
	return prefix(staffID, date) + ":gen"
}

func slotsKey(staffID int64, date string, generation int64) string {
	return prefix(staffID, date) + ":" + strconv.FormatInt(generation, 10)
}

// Generation возвращает текущее поколение записей сотрудника на дату.
// Читается до загрузки бронирований и передается в Get и Set
func (c *Cache) Generation(ctx context.Context, staffID int64, date string) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey(staffID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get generation: %v", ErrCache, err)
	}
	return generation, nil
}

// Get возвращает слоты поколения generation. ok = false, если записи нет
func (c *Cache) Get(ctx context.Context, staffID int64, date string, generation, serviceID int64) ([]domain.Slot, bool, error) {
	raw, err := c.client.HGet(ctx, slotsKey(staffID, date, generation), strconv.FormatInt(serviceID, 10)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: hget: %v", ErrCache, err)
	}

	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	slots := make([]domain.Slot, len(cached))
	for i, s := range cached {
		slots[i] = domain.Slot{Start: s.Start, End: s.End, Available: true}
	}
	return slots, true, nil
}

// Set сохраняет слоты под поколением generation и продлевает TTL ключей
func (c *Cache) Set(ctx context.Context, staffID int64, date string, generation, serviceID int64, slots []domain.Slot) error {
	cached := make([]cachedSlot, len(slots))
	for i, s := range slots {
		cached[i] = cachedSlot{Start: s.Start, End: s.End}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodec, err)
	}

	k := slotsKey(staffID, date, generation)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, k, strconv.FormatInt(serviceID, 10), raw)
	if c.ttl > 0 {
		// Ключ поколения живет не меньше любого ключа слотов
		pipe.Expire(ctx, k, c.ttl)
		pipe.Expire(ctx, generationKey(staffID, date), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: hset: %v", ErrCache, err)
	}
	return nil
}

// Invalidate переводит сотрудника на дату в новое поколение и удаляет слоты предыдущего
func (c *Cache) Invalidate(ctx context.Context, staffID int64, date string) error {
	genKey := generationKey(staffID, date)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, genKey)
	if c.ttl > 0 {
		pipe.Expire(ctx, genKey, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: incr: %v", ErrCache, err)
	}

	if err := c.client.Del(ctx, slotsKey(staffID, date, incr.Val()-1)).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrCache, err)
	}
	return nil
}

// Noop кэш для конфигурации без Redis
type Noop struct{}

// Generation всегда возвращает нулевое поколение
func (Noop) Generation(context.Context, int64, string) (int64, error) { return 0, nil }

// Get всегда промахивается
func (Noop) Get(context.Context, int64, string, int64, int64) ([]domain.Slot, bool, error) {
	return nil, false, nil
}

// Set ничего не делает
func (Noop) Set(context.Context, int64, string, int64, int64, []domain.Slot) error { return nil }

// Invalidate ничего не делает
func (Noop) Invalidate(context.Context, int64, string) error { return nil }
