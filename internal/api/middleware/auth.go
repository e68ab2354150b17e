package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Заголовки доверенного контекста, которые выставляет вышестоящий слой аутентификации
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderOwnerID  = "X-Owner-ID"
)

const (
	msgMissingUserID = "отсутствует или некорректен X-User-ID"
	msgInvalidRole   = "отсутствует или некорректна роль X-User-Role"
	msgMissingOwner  = "для владельца и сотрудника обязателен X-Owner-ID"
)

type actorKey struct{}

// Auth читает пользователя, роль и владельца из заголовков и кладет domain.Actor в контекст.
// При отсутствии или некорректности заголовков отвечает 401
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role, err := domain.ParseRole(r.Header.Get(HeaderUserRole))
		if err != nil {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		actor := domain.Actor{UserID: userID, Role: role}

		if raw := r.Header.Get(HeaderOwnerID); raw != "" {
			ownerID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || ownerID <= 0 {
				handlers.RespondUnauthorized(w, msgMissingOwner)
				return
			}
			actor.OwnerID = ownerID
		}

		if actor.IsBusinessSide() && actor.OwnerID == 0 {
			handlers.RespondUnauthorized(w, msgMissingOwner)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor кладет пользователя в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor достает пользователя из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}
